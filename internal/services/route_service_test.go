package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caretransit/internal/models"
)

func routeServiceOver(store *fakeStore) *RouteService {
	pipeline := NewRouteValidationPipeline(
		store, fakeVehicles{store}, fakeChildren{store}, fakeSchedules{store}, fakeRoutes{store},
	)
	return NewRouteService(pipeline, fakeRoutes{store}, fakeStops{store})
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	svc := routeServiceOver(store)

	route, err := svc.UpdateStatus(context.Background(), 1, routeID, models.RouteInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.RouteInProgress, route.Status)

	route, err = svc.UpdateStatus(context.Background(), 1, routeID, models.RouteCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.RouteCompleted, route.Status)
}

func TestUpdateStatusRejectsIllegalMove(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	svc := routeServiceOver(store)

	_, err := svc.UpdateStatus(context.Background(), 1, routeID, models.RouteCompleted)
	var state *StateConflictError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, models.RoutePlanned, state.State)
}

func TestReorderStopsReissuesGapKeys(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	a := store.seedStop(routeID, 1000, 1, 1)
	b := store.seedStop(routeID, 2000, 2, 2)
	c := store.seedStop(routeID, 3000, 3, 3)
	svc := routeServiceOver(store)

	stops, err := svc.ReorderStops(context.Background(), 1, routeID, map[models.StopID]int{
		models.StopID(a.ID): 3,
		models.StopID(b.ID): 1,
		models.StopID(c.ID): 2,
	})
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, b.ID, stops[0].ID)
	assert.Equal(t, c.ID, stops[1].ID)
	assert.Equal(t, a.ID, stops[2].ID)
	assert.Equal(t, []int{1000, 2000, 3000}, store.routeOrders(routeID))
}

func TestReorderStopsRejectsPartialMapping(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	a := store.seedStop(routeID, 1000, 1, 1)
	store.seedStop(routeID, 2000, 2, 2)
	svc := routeServiceOver(store)

	_, err := svc.ReorderStops(context.Background(), 1, routeID, map[models.StopID]int{
		models.StopID(a.ID): 1,
	})
	var structural *StructuralError
	assert.ErrorAs(t, err, &structural)
}

func TestRemoveStopsRenumbersSurvivors(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	a := store.seedStop(routeID, 1000, 1, 1)
	b := store.seedStop(routeID, 2000, 2, 2)
	c := store.seedStop(routeID, 3000, 3, 3)
	svc := routeServiceOver(store)

	remaining, err := svc.RemoveStops(context.Background(), 1, routeID, []models.StopID{models.StopID(b.ID)})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, a.ID, remaining[0].ID)
	assert.Equal(t, c.ID, remaining[1].ID)
	assert.Equal(t, []int{1000, 2000}, store.routeOrders(routeID))
	assert.True(t, store.stops[b.ID].Cancelled)
}

func TestRemoveStopsRefusesInProgressRoute(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RouteInProgress})
	a := store.seedStop(routeID, 1000, 1, 1)
	svc := routeServiceOver(store)

	_, err := svc.RemoveStops(context.Background(), 1, routeID, []models.StopID{models.StopID(a.ID)})
	var state *StateConflictError
	assert.ErrorAs(t, err, &state)
}

func TestRecordStopExecution(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RouteInProgress})
	a := store.seedStop(routeID, 1000, 1, 1)
	svc := routeServiceOver(store)

	at := time.Date(2024, 3, 4, 8, 12, 0, 0, time.UTC)
	stop, err := svc.RecordStopExecution(context.Background(), 1, routeID, models.StopID(a.ID), models.StopNoShow, at)
	require.NoError(t, err)
	assert.Equal(t, models.StopNoShow, stop.ActualStatus)
	require.NotNil(t, stop.ActualTime)
	assert.True(t, stop.ActualTime.Equal(at))
}

func TestRecordStopExecutionRejectsPending(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RouteInProgress})
	a := store.seedStop(routeID, 1000, 1, 1)
	svc := routeServiceOver(store)

	_, err := svc.RecordStopExecution(context.Background(), 1, routeID, models.StopID(a.ID), models.StopPending, time.Now())
	var structural *StructuralError
	assert.ErrorAs(t, err, &structural)
}

func TestCancelStopExcludesFromOrdering(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	a := store.seedStop(routeID, 1000, 1, 1)
	store.seedStop(routeID, 2000, 2, 2)
	svc := routeServiceOver(store)

	require.NoError(t, svc.CancelStop(context.Background(), 1, routeID, models.StopID(a.ID)))
	assert.Equal(t, []int{2000}, store.routeOrders(routeID))
}

func TestDeleteRefusesInProgressRoute(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RouteInProgress})
	svc := routeServiceOver(store)

	err := svc.Delete(context.Background(), 1, routeID)
	var state *StateConflictError
	require.ErrorAs(t, err, &state)

	_, ok := store.routes[routeID]
	assert.True(t, ok)
}

func TestDeleteRemovesPlannedRouteWithStops(t *testing.T) {
	store := newFakeStore()
	routeID := store.seedRoute(models.Route{Status: models.RoutePlanned})
	store.seedStop(routeID, 1000, 1, 1)
	svc := routeServiceOver(store)

	require.NoError(t, svc.Delete(context.Background(), 1, routeID))
	_, ok := store.routes[routeID]
	assert.False(t, ok)
	assert.Empty(t, store.routeOrders(routeID))
}
