package services

import "github.com/Dosada05/tcg-tournaments/models"

type tournamentCommand string

const (
	cmdPublish            tournamentCommand = "publish"
	cmdCloseRegistrations tournamentCommand = "close_registrations"
	cmdStart              tournamentCommand = "start"
	cmdComplete           tournamentCommand = "complete"
	cmdCancel             tournamentCommand = "cancel"
)

// tournamentTransitions is the only place tournament transition legality is encoded.
// Terminal states have no entry.
var tournamentTransitions = map[models.TournamentStatus]map[tournamentCommand]models.TournamentStatus{
	models.StatusDraft: {
		cmdPublish: models.StatusPublished,
		cmdCancel:  models.StatusCancelled,
	},
	models.StatusPublished: {
		cmdCloseRegistrations: models.StatusClosed,
		cmdStart:              models.StatusInProgress,
		cmdCancel:             models.StatusCancelled,
	},
	models.StatusClosed: {
		cmdStart:    models.StatusInProgress,
		cmdComplete: models.StatusCompleted,
		cmdCancel:   models.StatusCancelled,
	},
	models.StatusInProgress: {
		cmdComplete: models.StatusCompleted,
		cmdCancel:   models.StatusCancelled,
	},
}

var tournamentCommandTargets = map[tournamentCommand]models.TournamentStatus{
	cmdPublish:            models.StatusPublished,
	cmdCloseRegistrations: models.StatusClosed,
	cmdStart:              models.StatusInProgress,
	cmdComplete:           models.StatusCompleted,
	cmdCancel:             models.StatusCancelled,
}

func nextTournamentStatus(current models.TournamentStatus, cmd tournamentCommand) (models.TournamentStatus, error) {
	if next, ok := tournamentTransitions[current][cmd]; ok {
		return next, nil
	}
	return "", &TransitionError{
		Entity:    "tournament",
		Current:   string(current),
		Requested: string(tournamentCommandTargets[cmd]),
	}
}

type registrationCommand string

const (
	cmdRegister    registrationCommand = "register"
	cmdConfirm     registrationCommand = "confirm"
	cmdMarkPresent registrationCommand = "mark_present"
	cmdMarkAbsent  registrationCommand = "mark_absent"
	cmdWithdraw    registrationCommand = "withdraw"
	cmdCancelReg   registrationCommand = "cancel"
)

// registrationTransitions encodes registration legality. present and absent may be
// swapped to correct a check-in mistake; withdrawn and cancelled rows are only reused
// by a new registration.
var registrationTransitions = map[models.RegistrationStatus]map[registrationCommand]models.RegistrationStatus{
	models.RegistrationPending: {
		cmdConfirm:     models.RegistrationConfirmed,
		cmdMarkPresent: models.RegistrationPresent,
		cmdMarkAbsent:  models.RegistrationAbsent,
		cmdWithdraw:    models.RegistrationWithdrawn,
		cmdCancelReg:   models.RegistrationCancelled,
	},
	models.RegistrationConfirmed: {
		cmdMarkPresent: models.RegistrationPresent,
		cmdMarkAbsent:  models.RegistrationAbsent,
		cmdWithdraw:    models.RegistrationWithdrawn,
		cmdCancelReg:   models.RegistrationCancelled,
	},
	models.RegistrationPresent: {
		cmdMarkAbsent: models.RegistrationAbsent,
	},
	models.RegistrationAbsent: {
		cmdMarkPresent: models.RegistrationPresent,
	},
	models.RegistrationWithdrawn: {
		cmdRegister: models.RegistrationPending,
	},
	models.RegistrationCancelled: {
		cmdRegister: models.RegistrationPending,
	},
}

var registrationCommandTargets = map[registrationCommand]models.RegistrationStatus{
	cmdRegister:    models.RegistrationPending,
	cmdConfirm:     models.RegistrationConfirmed,
	cmdMarkPresent: models.RegistrationPresent,
	cmdMarkAbsent:  models.RegistrationAbsent,
	cmdWithdraw:    models.RegistrationWithdrawn,
	cmdCancelReg:   models.RegistrationCancelled,
}

func nextRegistrationStatus(current models.RegistrationStatus, cmd registrationCommand) (models.RegistrationStatus, error) {
	if next, ok := registrationTransitions[current][cmd]; ok {
		return next, nil
	}
	return "", &TransitionError{
		Entity:    "registration",
		Current:   string(current),
		Requested: string(registrationCommandTargets[cmd]),
	}
}
