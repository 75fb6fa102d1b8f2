// Package validation classifies the outcome of one provider's
// login/eligibility check into the four terminal states the survey
// frontend renders.
package validation

import (
	"fmt"
	"time"
	"voicesurvey-backend/lib/interaction"
)

type Status string

const (
	// token acquisition failed or the signed-out marker was found
	StatusLoggedOut Status = "loggedOut"
	// fetch/parse produced no usable interaction list
	StatusError Status = "error"
	// interactions are well-formed but fail the eligibility policy
	StatusIneligible Status = "ineligible"
	StatusLoggedIn   Status = "loggedIn"
)

type Result struct {
	Status Status
	// present only when Status is StatusLoggedIn
	Interactions []interaction.Interaction
	// non-fatal parse/extraction errors accumulated during the run
	Errors []error
	// present only when Status is StatusIneligible
	IneligibilityReason string
}

// Policy is one provider's eligibility gate. The thresholds differ
// between providers on purpose, see DESIGN.md.
type Policy struct {
	// minimum number of interactions, inclusive
	MinInteractions int
	// how far back the earliest interaction must reach; zero
	// disables the age check (used when a provider's export carries
	// no timestamps)
	MinAccountAge time.Duration
}

// Evaluate applies the policy checks in order and short-circuits on the
// first failure; the failing check determines the reason string. It
// must only be called on a well-formed interaction list.
func (p Policy) Evaluate(list []interaction.Interaction, now time.Time) (reason string, ok bool) {
	if len(list) == 0 {
		return "no interactions at all", false
	}
	if len(list) < p.MinInteractions {
		return fmt.Sprintf("used fewer than %d times", p.MinInteractions), false
	}
	if p.MinAccountAge > 0 {
		earliest := list[0].Timestamp
		for _, i := range list[1:] {
			if i.Timestamp < earliest {
				earliest = i.Timestamp
			}
		}
		cutoff := now.Add(-p.MinAccountAge).UnixMilli()
		if earliest > cutoff {
			return "device owned less than a month", false
		}
	}
	return "", true
}
