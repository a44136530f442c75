package domain

import "github.com/ffhb/clubstore/pkg/eventsourcing"

// NewEventRegistry returns a type registry with every domain event wired in.
func NewEventRegistry() *eventsourcing.TypeRegistry {
	r := eventsourcing.NewTypeRegistry()

	register := func(factory func() eventsourcing.Event) {
		r.Register(factory().EventType(), factory)
	}

	register(func() eventsourcing.Event { return &ClubCreated{} })
	register(func() eventsourcing.Event { return &ClubOwnerChanged{} })
	register(func() eventsourcing.Event { return &ClubCoachAdded{} })

	register(func() eventsourcing.Event { return &UserSignedUp{} })
	register(func() eventsourcing.Event { return &UserNameUpdated{} })
	register(func() eventsourcing.Event { return &UserEmailUpdated{} })

	register(func() eventsourcing.Event { return &PlayerRegistered{} })
	register(func() eventsourcing.Event { return &PlayerRegisteredToClub{} })
	register(func() eventsourcing.Event { return &PlayerUnregisteredFromClub{} })

	register(func() eventsourcing.Event { return &PlayerLicenseRegistered{} })

	register(func() eventsourcing.Event { return &CollectiveCreated{} })
	register(func() eventsourcing.Event { return &PlayerAddedToCollective{} })
	register(func() eventsourcing.Event { return &PlayerRemovedFromCollective{} })

	register(func() eventsourcing.Event { return &TrainingSessionCreated{} })
	register(func() eventsourcing.Event { return &TrainingSessionCanceled{} })
	register(func() eventsourcing.Event { return &PlayerRemovedFromTrainingSession{} })
	register(func() eventsourcing.Event { return &PlayerTrainingSessionStatusChangedToPresent{} })
	register(func() eventsourcing.Event { return &PlayerTrainingSessionStatusChangedToAbsent{} })
	register(func() eventsourcing.Event { return &PlayerTrainingSessionStatusChangedToLate{} })

	return r
}
