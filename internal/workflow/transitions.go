// Package workflow holds the status machines for every STROT entity and the
// worker matching filter. It has no I/O; handlers consult it before issuing
// the guarded update that makes the move stick.
package workflow

import (
	"fmt"

	"strot/pkg/types"
)

type graph[S ~string] map[S][]S

func (g graph[S]) allows(from, to S) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (g graph[S]) check(entity string, from, to S) error {
	if !g.allows(from, to) {
		return fmt.Errorf("%w: %s %s -> %s", types.ErrInvalidTransition, entity, from, to)
	}
	return nil
}

var donationGraph = graph[types.DonationStatus]{
	types.DonationStatusPending: {types.DonationStatusClaimed},
	types.DonationStatusClaimed: {types.DonationStatusDelivered},
}

var jobGraph = graph[types.JobStatus]{
	types.JobStatusOpen: {types.JobStatusFilled, types.JobStatusClosed},
}

var applicationGraph = graph[types.ApplicationStatus]{
	types.ApplicationStatusPending: {types.ApplicationStatusSelected, types.ApplicationStatusRejected},
}

var workshopGraph = graph[types.WorkshopStatus]{
	types.WorkshopStatusProposed: {types.WorkshopStatusApproved, types.WorkshopStatusRejected},
	types.WorkshopStatusApproved: {types.WorkshopStatusCompleted},
}

var communityHeadGraph = graph[types.CommunityHeadStatus]{
	types.CommunityHeadStatusPending: {types.CommunityHeadStatusActive, types.CommunityHeadStatusSuspended},
	types.CommunityHeadStatusActive:  {types.CommunityHeadStatusSuspended, types.CommunityHeadStatusExpired},
}

// Placed is reachable only through a selected application, see Placement.
var workerGraph = graph[types.WorkerStatus]{
	types.WorkerStatusAvailable: {types.WorkerStatusInactive},
	types.WorkerStatusInactive:  {types.WorkerStatusAvailable},
}

func DonationTransition(from, to types.DonationStatus) error {
	return donationGraph.check("donation", from, to)
}

func JobTransition(from, to types.JobStatus) error {
	return jobGraph.check("job", from, to)
}

func ApplicationTransition(from, to types.ApplicationStatus) error {
	return applicationGraph.check("application", from, to)
}

func WorkshopTransition(from, to types.WorkshopStatus) error {
	return workshopGraph.check("workshop", from, to)
}

func CommunityHeadTransition(from, to types.CommunityHeadStatus) error {
	return communityHeadGraph.check("community head", from, to)
}

func WorkerTransition(from, to types.WorkerStatus) error {
	return workerGraph.check("worker", from, to)
}

// Placement validates the worker side of selecting an application.
func Placement(worker types.WorkerStatus) error {
	if worker != types.WorkerStatusAvailable {
		return fmt.Errorf("%w: worker %s -> %s", types.ErrInvalidTransition, worker, types.WorkerStatusPlaced)
	}
	return nil
}

// ValidDonationStatus and friends guard query parameters and request bodies
// against values outside the enum.
func ValidDonationStatus(s types.DonationStatus) bool {
	switch s {
	case types.DonationStatusPending, types.DonationStatusClaimed, types.DonationStatusDelivered:
		return true
	}
	return false
}

func ValidJobStatus(s types.JobStatus) bool {
	switch s {
	case types.JobStatusOpen, types.JobStatusFilled, types.JobStatusClosed:
		return true
	}
	return false
}

func ValidWorkshopStatus(s types.WorkshopStatus) bool {
	switch s {
	case types.WorkshopStatusProposed, types.WorkshopStatusApproved, types.WorkshopStatusRejected, types.WorkshopStatusCompleted:
		return true
	}
	return false
}

func ValidCommunityHeadStatus(s types.CommunityHeadStatus) bool {
	switch s {
	case types.CommunityHeadStatusPending, types.CommunityHeadStatusActive, types.CommunityHeadStatusSuspended, types.CommunityHeadStatusExpired:
		return true
	}
	return false
}
