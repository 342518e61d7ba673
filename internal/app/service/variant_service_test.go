package service

import (
	"testing"
	"time"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func displayValues(s variant.Section) []string {
	out := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, it.DisplayValue)
	}
	return out
}

func TestVariantService_GetView(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)
	red, blue, m := valueID(t, product, "Red"), valueID(t, product, "Blue"), valueID(t, product, "M")

	view, err := env.variants.GetView(product.ID, nil)
	require.NoError(t, err)
	require.Len(t, view.Sections, 2)
	assert.Equal(t, "Color", view.Sections[0].Title, "color is ordered first")
	assert.Equal(t, []string{"RED", "BLUE"}, displayValues(view.Sections[0]))
	assert.Equal(t, []string{"S", "M"}, displayValues(view.Sections[1]))
	assert.Equal(t, []variant.ValueID{red}, view.Selection)
	assert.Nil(t, view.ResolvedSKU)

	view, err = env.variants.GetView(product.ID, []variant.ValueID{m, 999, blue})
	require.NoError(t, err)
	assert.Equal(t, []variant.ValueID{blue, m}, view.Selection)
	require.NotNil(t, view.ResolvedSKU)
	assert.Equal(t, "TEE-BLUE-M", view.ResolvedSKU.Code)
	assert.True(t, view.IsSelectionComplete)

	_, err = env.variants.GetView(999, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestVariantService_SessionLifecycle(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)
	red, blue := valueID(t, product, "Red"), valueID(t, product, "Blue")
	s, m := valueID(t, product, "S"), valueID(t, product, "M")

	started, err := env.variants.StartSession(bg, product.ID)
	require.NoError(t, err)
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, []variant.ValueID{red}, started.Selection)

	view, err := env.variants.Choose(bg, started.SessionID, variant.Choice{ValueID: m, DimensionIndex: 1})
	require.NoError(t, err)
	assert.True(t, view.Changed)
	require.NotNil(t, view.ResolvedSKU)
	assert.Equal(t, "TEE-RED-M", view.ResolvedSKU.Code)
	assert.Equal(t, []string{"https://cdn.example/red-m.jpg", "https://cdn.example/red-m-back.jpg"}, view.Media)

	view, err = env.variants.Choose(bg, started.SessionID, variant.Choice{ValueID: blue, DimensionIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, []variant.ValueID{blue}, view.Selection, "primary choice clears the rest")
	assert.Nil(t, view.ResolvedSKU)
	assert.Equal(t, []string{"https://cdn.example/red-m.jpg", "https://cdn.example/red-m-back.jpg"}, view.Media, "media survives while unresolved")

	view, err = env.variants.Choose(bg, started.SessionID, variant.Choice{ValueID: 999, DimensionIndex: 1})
	require.NoError(t, err)
	assert.False(t, view.Changed)
	assert.Equal(t, []variant.ValueID{blue}, view.Selection)

	view, err = env.variants.Choose(bg, started.SessionID, variant.Choice{ValueID: s, DimensionIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "TEE-BLUE-S", view.ResolvedSKU.Code)

	stored, err := env.variants.GetSession(bg, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []variant.ValueID{blue, s}, stored.Selection)
	assert.False(t, stored.Changed)

	view, err = env.variants.ResetSession(bg, started.SessionID)
	require.NoError(t, err)
	assert.True(t, view.Changed)
	assert.Equal(t, []variant.ValueID{red}, view.Selection)

	require.NoError(t, env.variants.EndSession(bg, started.SessionID))
	_, err = env.variants.GetSession(bg, started.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, env.variants.EndSession(bg, started.SessionID), ErrSessionNotFound)
}

func TestVariantService_SessionExpires(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)

	started, err := env.variants.StartSession(bg, product.ID)
	require.NoError(t, err)

	env.redis.FastForward(31 * time.Minute)

	_, err = env.variants.Choose(bg, started.SessionID, variant.Choice{ValueID: valueID(t, product, "S"), DimensionIndex: 1})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVariantService_SessionOfDeletedProduct(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)

	started, err := env.variants.StartSession(bg, product.ID)
	require.NoError(t, err)
	require.NoError(t, env.products.DeleteProduct(product.ID))

	_, err = env.variants.GetSession(bg, started.SessionID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestVariantService_NewLiveSession(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)

	session, err := env.variants.NewLiveSession(product.ID)
	require.NoError(t, err)
	assert.True(t, session.Choose(valueID(t, product, "S"), 1))
	require.NotNil(t, session.View().ResolvedSKU)
	assert.Equal(t, "TEE-RED-S", session.View().ResolvedSKU.Code)
}

func TestVariantService_RefreshLiveSession(t *testing.T) {
	env := setupServiceTest(t)
	product := createTee(t, env)

	session, err := env.variants.NewLiveSession(product.ID)
	require.NoError(t, err)
	require.True(t, session.Choose(valueID(t, product, "S"), 1))

	redS := skuID(t, product, "TEE-RED-S")
	require.NoError(t, env.products.AttachMedia(product.ID, &model.SKUMedia{
		SKUID:    redS,
		Position: 1,
		URL:      "https://cdn.example/red-s-back.jpg",
	}))

	refreshed, err := env.variants.RefreshLiveSession(product.ID, session)
	require.NoError(t, err)
	assert.Equal(t, session.Selection(), refreshed.Selection())
	assert.Equal(t, []string{
		"https://cdn.example/red-s.jpg",
		"https://cdn.example/red-s-back.jpg",
	}, refreshed.View().ResolvedMediaURLs)

	require.NoError(t, env.products.DeleteProduct(product.ID))
	_, err = env.variants.RefreshLiveSession(product.ID, refreshed)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
