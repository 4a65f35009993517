package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caretransit/internal/models"
	"caretransit/internal/scheduling"
)

const testCompany models.CompanyID = 1

func seedDriver(store *fakeStore, id uint, status string) {
	d := &models.Driver{Status: status}
	d.ID = id
	store.drivers[models.DriverID(id)] = d
}

func seedVehicle(store *fakeStore, id uint, status string, seats, wheelchair, special int) {
	v := &models.Vehicle{Status: status, Seats: seats, WheelchairSpots: wheelchair, SpecialSeats: special}
	v.ID = id
	store.vehicles[models.VehicleID(id)] = v
}

func seedChild(store *fakeStore, id uint, status string, wheelchair bool) {
	c := &models.Child{Name: "child", Status: status, NeedsWheelchair: wheelchair}
	c.ID = id
	store.children[models.ChildID(id)] = c
}

func seedSchedule(store *fakeStore, id uint, childID models.ChildID) {
	s := &models.Schedule{ChildID: childID, PickupTime: "07:30", DropoffTime: "08:15"}
	s.ID = id
	store.schedules[models.ScheduleID(id)] = s
}

func pipelineOver(store *fakeStore) *RouteValidationPipeline {
	return NewRouteValidationPipeline(
		store,
		fakeVehicles{store},
		fakeChildren{store},
		fakeSchedules{store},
		fakeRoutes{store},
	)
}

func validCommand() *CreateRouteCommand {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	driverID := models.DriverID(1)
	return &CreateRouteCommand{
		CompanyID:    testCompany,
		Name:         "Morning North",
		Date:         date,
		DriverID:     &driverID,
		VehicleID:    1,
		PlannedStart: date.Add(7 * time.Hour),
		PlannedEnd:   date.Add(9 * time.Hour),
		Stops: []StopDefinition{
			{ChildID: 1, ScheduleID: 1, Kind: models.StopPickup, Order: 1, PlannedTime: date.Add(7*time.Hour + 15*time.Minute)},
			{ChildID: 1, ScheduleID: 1, Kind: models.StopDropoff, Order: 2, PlannedTime: date.Add(8 * time.Hour)},
		},
	}
}

func seededStore() *fakeStore {
	store := newFakeStore()
	seedDriver(store, 1, models.DriverActive)
	seedVehicle(store, 1, models.VehicleAvailable, 8, 1, 1)
	seedChild(store, 1, models.ChildActive, false)
	seedSchedule(store, 1, 1)
	return store
}

func TestValidatePasses(t *testing.T) {
	store := seededStore()

	vc, err := pipelineOver(store).Validate(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, uint(1), vc.Driver.ID)
	assert.Equal(t, uint(1), vc.Vehicle.ID)
	assert.Len(t, vc.Children, 1)
	assert.Len(t, vc.Schedules, 1)
}

func TestValidateStructure(t *testing.T) {
	store := seededStore()
	p := pipelineOver(store)

	empty := validCommand()
	empty.Stops = nil
	_, err := p.Validate(context.Background(), empty)
	var structural *StructuralError
	assert.ErrorAs(t, err, &structural)

	gapped := validCommand()
	gapped.Stops[1].Order = 3
	_, err = p.Validate(context.Background(), gapped)
	assert.ErrorAs(t, err, &structural)

	badKind := validCommand()
	badKind.Stops[0].Kind = "DETOUR"
	_, err = p.Validate(context.Background(), badKind)
	assert.ErrorAs(t, err, &structural)
}

func TestValidateMissingEntities(t *testing.T) {
	store := seededStore()
	delete(store.drivers, 1)

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "driver", notFound.Entity)
}

func TestValidateDriverMustBeActive(t *testing.T) {
	store := seededStore()
	store.drivers[1].Status = models.DriverOnLeave

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var state *StateConflictError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "driver", state.Entity)
}

func TestValidateDriverTimeConflict(t *testing.T) {
	store := seededStore()
	cmd := validCommand()
	driverID := models.DriverID(1)
	store.seedRoute(models.Route{
		Name:         "Existing",
		Date:         cmd.Date,
		DriverID:     &driverID,
		VehicleID:    9,
		PlannedStart: cmd.PlannedStart,
		PlannedEnd:   cmd.PlannedEnd,
	})

	_, err := pipelineOver(store).Validate(context.Background(), cmd)
	var conflict *SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "driver", conflict.Resource)
	assert.Equal(t, "Existing", conflict.RouteName)
}

func TestValidateTouchingRoutesDoNotConflict(t *testing.T) {
	store := seededStore()
	cmd := validCommand()
	driverID := models.DriverID(1)
	store.seedRoute(models.Route{
		Name:         "Earlier",
		Date:         cmd.Date,
		DriverID:     &driverID,
		VehicleID:    9,
		PlannedStart: cmd.PlannedStart.Add(-2 * time.Hour),
		PlannedEnd:   cmd.PlannedStart, // ends exactly when ours starts
	})

	_, err := pipelineOver(store).Validate(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestValidateVehicleChecks(t *testing.T) {
	store := seededStore()
	store.vehicles[1].Status = models.VehicleInMaintenance

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var state *StateConflictError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "vehicle", state.Entity)

	store.vehicles[1].Status = models.VehicleAvailable
	cmd := validCommand()
	store.seedRoute(models.Route{
		Name:         "Same van",
		Date:         cmd.Date,
		VehicleID:    1,
		PlannedStart: cmd.PlannedStart,
		PlannedEnd:   cmd.PlannedEnd,
	})
	_, err = pipelineOver(store).Validate(context.Background(), cmd)
	var conflict *SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "vehicle", conflict.Resource)
}

func TestValidateChildDoubleBooking(t *testing.T) {
	store := seededStore()
	cmd := validCommand()
	otherRoute := store.seedRoute(models.Route{
		Name:      "Other route",
		Date:      cmd.Date,
		VehicleID: 9,
	})
	// The child is already picked up at 07:20 and dropped at 07:50 on
	// the same date, overlapping our 07:15-08:00 window.
	pickup := store.seedStop(otherRoute, 1000, 1, 1)
	pickup.PlannedTime = cmd.Date.Add(7*time.Hour + 20*time.Minute)
	dropoff := store.seedStop(otherRoute, 2000, 1, 1)
	dropoff.PlannedTime = cmd.Date.Add(7*time.Hour + 50*time.Minute)

	_, err := pipelineOver(store).Validate(context.Background(), cmd)
	var conflict *SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "child", conflict.Resource)
}

func TestValidateChildMustBeActive(t *testing.T) {
	store := seededStore()
	store.children[1].Status = models.ChildInactive

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var state *StateConflictError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "child", state.Entity)
}

func TestValidateScheduleOwnership(t *testing.T) {
	store := seededStore()
	seedChild(store, 2, models.ChildActive, false)
	store.schedules[1].ChildID = 2 // schedule belongs to another child

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var structural *StructuralError
	assert.ErrorAs(t, err, &structural)
}

func TestValidateCapacity(t *testing.T) {
	store := seededStore()
	store.children[1].NeedsWheelchair = true
	store.vehicles[1].WheelchairSpots = 0

	_, err := pipelineOver(store).Validate(context.Background(), validCommand())
	var capacity *CapacityError
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, scheduling.ConstraintWheelchair, capacity.Violation.Constraint)
}
