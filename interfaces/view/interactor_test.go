package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kith-backend/domain/core/valueobjects"
)

// With the default 800x600 viewport the fixture nodes land at
// alice (400,300), bob (500,300) and carol (500,400) on screen.
func newFixtureInteractor(t *testing.T, recenter func(valueobjects.PersonID) error, navigate func(string)) *Interactor {
	t.Helper()
	network, sub := familyFixture(t)
	interactor := NewInteractor(NewViewport(800, 600), recenter, navigate)
	interactor.Show(BuildScene(sub, network, fixturePositions()), sub, network)
	return interactor
}

func TestInteractor_ClickOnNodeRecenters(t *testing.T) {
	var recentered []string
	interactor := newFixtureInteractor(t, func(id valueobjects.PersonID) error {
		recentered = append(recentered, id.String())
		return nil
	}, nil)

	require.NoError(t, interactor.Click(400, 300))

	require.Len(t, recentered, 1)
	assert.Equal(t, "alice", recentered[0])
}

func TestInteractor_ClickOnBackgroundAndEdgeIsNoOp(t *testing.T) {
	var recentered []string
	interactor := newFixtureInteractor(t, func(id valueobjects.PersonID) error {
		recentered = append(recentered, id.String())
		return nil
	}, nil)

	// Empty background.
	require.NoError(t, interactor.Click(10, 10))
	// Mid-edge between alice and bob, outside both node radii.
	require.NoError(t, interactor.Click(450, 302))

	assert.Empty(t, recentered)
}

func TestInteractor_OpenProfileEmitsNodeID(t *testing.T) {
	var opened []string
	interactor := newFixtureInteractor(t, nil, func(id string) {
		opened = append(opened, id)
	})

	assert.True(t, interactor.OpenProfile(500, 300))
	assert.False(t, interactor.OpenProfile(10, 10))

	require.Len(t, opened, 1)
	assert.Equal(t, "bob", opened[0])
}

func TestInteractor_HoverResolvesNodeTooltip(t *testing.T) {
	interactor := newFixtureInteractor(t, nil, nil)

	detail, ok := interactor.Hover(400, 300)

	require.True(t, ok)
	require.NotNil(t, detail.Node)
	assert.Nil(t, detail.Edge)
	assert.Equal(t, "Alice", detail.Node.DisplayName)
}

func TestInteractor_HoverResolvesEdgeTooltip(t *testing.T) {
	interactor := newFixtureInteractor(t, nil, nil)

	detail, ok := interactor.Hover(450, 302)

	require.True(t, ok)
	require.NotNil(t, detail.Edge)
	assert.Nil(t, detail.Node)
	assert.Equal(t, "Parent", detail.Edge.TypeName)
	assert.Equal(t, "Alice is Parent of Bob", detail.Edge.Description)
	assert.Equal(t, 4, detail.Edge.Strength)
	assert.Empty(t, detail.Edge.StartedDate)
}

func TestInteractor_HoverMissesBackground(t *testing.T) {
	interactor := newFixtureInteractor(t, nil, nil)

	_, ok := interactor.Hover(10, 10)

	assert.False(t, ok)
}
