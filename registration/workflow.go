// Package registration runs the sign-up workflow: create an identity, then
// write the dietary profile that belongs to it.
package registration

import (
	"context"
	"errors"
	"strings"

	"nutriflow/form"
	"nutriflow/models"

	"go.uber.org/zap"
)

const (
	SuccessMessage       = "Success! Check your email for verification."
	SignUpFailedMessage  = "Sign up failed"
	ProfileFailedMessage = "Profile creation failed"
	InFlightMessage      = "Registration already in progress."
)

var (
	ErrInFlight = errors.New("registration already in progress")
	ErrNoUser   = errors.New("identity provider returned no user")
)

// AuthService creates identities.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.AuthUser, error)
}

// IdentityRemover is implemented by providers that can undo a sign up.
type IdentityRemover interface {
	DeleteUser(ctx context.Context, id string) error
}

// DataStore persists profiles keyed by identity id.
type DataStore interface {
	InsertProfile(ctx context.Context, p models.Profile) error
}

// Form is the slice of the form state the workflow needs.
type Form interface {
	Values() form.Values
	SetStatus(msg string)
}

// Stage tells how far a submission got.
type Stage int

const (
	StageRejected Stage = iota
	StageIdentity
	StageProfile
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRejected:
		return "rejected"
	case StageIdentity:
		return "identity"
	case StageProfile:
		return "profile"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Outcome describes one run of Register. Stage is where it stopped: on
// failure the failing step, StageDone on success.
type Outcome struct {
	Status      string
	Stage       Stage
	Profile     *models.Profile
	Err         error
	Compensated bool
}

func (o Outcome) OK() bool { return o.Err == nil }

type Workflow struct {
	auth       AuthService
	store      DataStore
	guard      Guard
	compensate bool
	log        *zap.Logger
}

type Option func(*Workflow)

// WithGuard replaces the default in-process guard.
func WithGuard(g Guard) Option {
	return func(w *Workflow) { w.guard = g }
}

// WithCompensation deletes the new identity when the profile write fails,
// provided the AuthService implements IdentityRemover.
func WithCompensation(on bool) Option {
	return func(w *Workflow) { w.compensate = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.log = l }
}

func New(auth AuthService, store DataStore, opts ...Option) *Workflow {
	w := &Workflow{
		auth:  auth,
		store: store,
		guard: NewLocalGuard(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register reads the current form values, signs the user up and writes the
// profile. The status message on f is updated along the way and returned in
// the Outcome.
func (w *Workflow) Register(ctx context.Context, f Form) Outcome {
	f.SetStatus("")
	in := f.Values()
	log := w.log.With(zap.String("email", in.Email))

	// A blank email has nothing to serialise on; the provider rejects it.
	if strings.TrimSpace(in.Email) != "" {
		release, ok, err := w.guard.Acquire(ctx, GuardKey(in.Email))
		switch {
		case err != nil:
			log.Warn("submit guard unavailable, continuing unguarded", zap.Error(err))
		case !ok:
			f.SetStatus(InFlightMessage)
			return Outcome{Status: InFlightMessage, Stage: StageRejected, Err: ErrInFlight}
		default:
			defer release()
		}
	}

	user, err := w.auth.SignUp(ctx, in.Email, in.Password)
	if err == nil && (user == nil || user.ID == "") {
		err = ErrNoUser
	}
	if err != nil {
		msg := messageOr(err, SignUpFailedMessage)
		if errors.Is(err, ErrNoUser) {
			msg = SignUpFailedMessage
		}
		log.Info("sign up failed", zap.Error(err))
		f.SetStatus(msg)
		return Outcome{Status: msg, Stage: StageIdentity, Err: err}
	}

	profile := models.Profile{
		ID:        user.ID,
		FullName:  in.FullName,
		Diet:      in.Diet,
		Allergies: ParseAllergies(in.Allergies),
		Goal:      in.Goal,
	}
	if err := w.store.InsertProfile(ctx, profile); err != nil {
		msg := messageOr(err, ProfileFailedMessage)
		log.Error("profile insert failed after sign up",
			zap.String("user_id", user.ID), zap.Error(err))
		out := Outcome{Status: msg, Stage: StageProfile, Profile: &profile, Err: err}
		out.Compensated = w.undoSignUp(ctx, user.ID, log)
		f.SetStatus(msg)
		return out
	}

	log.Info("registered", zap.String("user_id", user.ID), zap.String("diet", string(profile.Diet)))
	f.SetStatus(SuccessMessage)
	return Outcome{Status: SuccessMessage, Stage: StageDone, Profile: &profile}
}

func (w *Workflow) undoSignUp(ctx context.Context, id string, log *zap.Logger) bool {
	if !w.compensate {
		return false
	}
	remover, ok := w.auth.(IdentityRemover)
	if !ok {
		log.Warn("identity left without profile; provider cannot delete users", zap.String("user_id", id))
		return false
	}
	if err := remover.DeleteUser(ctx, id); err != nil {
		log.Error("failed to delete identity after profile failure",
			zap.String("user_id", id), zap.Error(err))
		return false
	}
	log.Info("deleted identity after profile failure", zap.String("user_id", id))
	return true
}

func messageOr(err error, fallback string) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
