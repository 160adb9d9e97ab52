package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/events"
	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/dogdesk/DogDeskBack/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotConfigured         = errors.New("data store not configured")
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmptyPatch            = errors.New("patch contains no recognized fields")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrDogNotFound           = errors.New("dog not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrTrainerNotFound       = errors.New("trainer not found")
	ErrPackageNotFound       = errors.New("package not found")
	ErrPackageClientMismatch = errors.New("package belongs to a different client")
)

// SessionEventSink receives post-commit notifications for external
// collaborators (email, calendar). Publishing failures are the sink's
// problem; the ledger has already committed.
type SessionEventSink interface {
	Publish(ctx context.Context, event events.SessionEvent)
}

// BalanceCache invalidates the cached remaining-credit projection for a
// client after a ledger mutation commits.
type BalanceCache interface {
	InvalidateClient(ctx context.Context, clientID int64)
}

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	dogRepo     *repository.DogRepository
	clientRepo  *repository.ClientRepository
	packageRepo *repository.PackageRepository
	userRepo    *repository.UserRepository

	events   SessionEventSink
	balances BalanceCache

	autoProvisionTrainer bool
	defaultTrainerEmail  string
}

type SessionServiceOptions struct {
	AutoProvisionTrainer bool
	DefaultTrainerEmail  string
	Events               SessionEventSink
	Balances             BalanceCache
}

func NewSessionService(db *pgxpool.Pool, opts SessionServiceOptions) *SessionService {
	return &SessionService{
		db:                   db,
		sessionRepo:          repository.NewSessionRepository(db),
		dogRepo:              repository.NewDogRepository(db),
		clientRepo:           repository.NewClientRepository(db),
		packageRepo:          repository.NewPackageRepository(db),
		userRepo:             repository.NewUserRepository(db),
		events:               opts.Events,
		balances:             opts.Balances,
		autoProvisionTrainer: opts.AutoProvisionTrainer,
		defaultTrainerEmail:  opts.DefaultTrainerEmail,
	}
}

type CreateSessionInput struct {
	DogID           int64
	ClientID        *int64
	TrainerID       *int64
	StartTime       time.Time
	DurationMinutes int
	Location        string
	Status          string
	Title           *string
	Notes           *string
	Objectives      []string
	PackageID       *int64
	TravelMinutes   int
	BufferMinutes   int
}

func (s *SessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	if input.DogID <= 0 {
		return nil, fmt.Errorf("%w: dogId is required", ErrInvalidInput)
	}
	if input.DurationMinutes < 1 {
		return nil, fmt.Errorf("%w: durationMinutes must be at least 1", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if input.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	status := models.SessionStatusScheduled
	if input.Status != "" {
		normalized, err := normalizeSessionStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = normalized
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txDogRepo := repository.NewDogRepository(tx)
	txClientRepo := repository.NewClientRepository(tx)
	txPackageRepo := repository.NewPackageRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)
	txAuditRepo := repository.NewAuditRepository(tx)

	dog, err := txDogRepo.GetByID(ctx, input.DogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDogNotFound
		}
		return nil, err
	}

	clientID := dog.ClientID
	if input.ClientID != nil {
		if _, err := txClientRepo.GetByID(ctx, *input.ClientID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrClientNotFound
			}
			return nil, err
		}
		clientID = *input.ClientID
	}

	trainerID, err := s.resolveTrainer(ctx, txUserRepo, input.TrainerID)
	if err != nil {
		return nil, err
	}

	var reservedPackage *models.Package
	if input.PackageID != nil {
		reservedPackage, err = reservePackage(ctx, txPackageRepo, *input.PackageID, clientID)
		if err != nil {
			return nil, err
		}
	}

	objectives := input.Objectives
	if objectives == nil {
		objectives = []string{}
	}

	createInput := repository.CreateSessionInput{
		DogID:           input.DogID,
		ClientID:        clientID,
		TrainerID:       trainerID,
		StartTime:       input.StartTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		Location:        strings.TrimSpace(input.Location),
		Status:          status,
		Title:           input.Title,
		Notes:           input.Notes,
		Objectives:      objectives,
		TravelMinutes:   input.TravelMinutes,
		BufferMinutes:   input.BufferMinutes,
	}
	if reservedPackage != nil {
		createInput.PackageID = &reservedPackage.ID
	}

	session, err := txSessionRepo.Create(ctx, createInput)
	if err != nil {
		return nil, err
	}

	if reservedPackage != nil {
		summary := fmt.Sprintf("reserved 1 credit from package %d for dog %d", reservedPackage.ID, session.DogID)
		if _, err := txAuditRepo.Append(ctx, "session.create", "session", session.ID, summary); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if reservedPackage != nil && s.balances != nil {
		s.balances.InvalidateClient(ctx, clientID)
	}
	s.publish(ctx, "session.created", session)

	return session, nil
}

type SessionPatch struct {
	Objective       *string
	Objectives      []string
	Note            *string
	Title           *string
	StartTime       *time.Time
	DurationMinutes *int
	Location        *string
	Status          *string
	TrainerID       *int64
	TravelMinutes   *int
	BufferMinutes   *int
	SetPackage      bool
	PackageID       *int64
	LinkNoteToDog   *bool
}

func (p *SessionPatch) Empty() bool {
	return p.Objective == nil &&
		p.Objectives == nil &&
		p.Note == nil &&
		p.Title == nil &&
		p.StartTime == nil &&
		p.DurationMinutes == nil &&
		p.Location == nil &&
		p.Status == nil &&
		p.TrainerID == nil &&
		p.TravelMinutes == nil &&
		p.BufferMinutes == nil &&
		!p.SetPackage &&
		p.LinkNoteToDog == nil
}

type UpdateSessionResult struct {
	Objectives  []string
	SessionNote *string
	Title       *string
}

func (s *SessionService) UpdateSession(ctx context.Context, sessionID int64, patch SessionPatch) (*UpdateSessionResult, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	if patch.DurationMinutes != nil && *patch.DurationMinutes < 1 {
		return nil, fmt.Errorf("%w: durationMinutes must be at least 1", ErrInvalidInput)
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		return nil, fmt.Errorf("%w: location must not be empty", ErrInvalidInput)
	}
	if patch.Status != nil {
		normalized, err := normalizeSessionStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &normalized
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txDogRepo := repository.NewDogRepository(tx)
	txPackageRepo := repository.NewPackageRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)
	txAuditRepo := repository.NewAuditRepository(tx)

	current, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if patch.TrainerID != nil {
		if _, err := txUserRepo.GetByID(ctx, *patch.TrainerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTrainerNotFound
			}
			return nil, err
		}
	}

	update := repository.SessionUpdate{
		StartTime:       patch.StartTime,
		DurationMinutes: patch.DurationMinutes,
		Location:        patch.Location,
		Status:          patch.Status,
		Title:           patch.Title,
		Notes:           patch.Note,
		TrainerID:       patch.TrainerID,
		TravelMinutes:   patch.TravelMinutes,
		BufferMinutes:   patch.BufferMinutes,
	}

	packageChanged := false
	if patch.SetPackage {
		// The release side of a swap works off the locked row's current
		// link, so a retried request cannot double-release.
		previousID := current.PackageID

		var targetID *int64
		if patch.PackageID != nil {
			target, err := reservePackageTarget(ctx, txPackageRepo, *patch.PackageID, current.ClientID)
			if err != nil {
				return nil, err
			}
			targetID = &target.ID
		}

		if !samePackage(previousID, targetID) {
			if previousID != nil {
				if _, err := txPackageRepo.AdjustUsedCredits(ctx, *previousID, -1); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return nil, ErrPackageNotFound
					}
					return nil, err
				}
			}
			if targetID != nil {
				if _, err := txPackageRepo.AdjustUsedCredits(ctx, *targetID, 1); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return nil, ErrPackageNotFound
					}
					return nil, err
				}
			}
			packageChanged = true
		}

		update.SetPackage = true
		update.PackageID = targetID
	}

	if patch.Objectives != nil {
		update.Objectives = patch.Objectives
	} else if patch.Objective != nil {
		objectives := append([]string{}, current.Objectives...)
		objectives = append(objectives, *patch.Objective)
		update.Objectives = objectives
	}

	updated, err := txSessionRepo.Update(ctx, sessionID, update)
	if err != nil {
		return nil, err
	}

	if patch.LinkNoteToDog != nil && *patch.LinkNoteToDog && patch.Note != nil {
		if err := txDogRepo.AppendNote(ctx, current.DogID, *patch.Note); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrDogNotFound
			}
			return nil, err
		}
	}

	summary := fmt.Sprintf("updated %s", strings.Join(patchFieldNames(patch), ", "))
	if _, err := txAuditRepo.Append(ctx, "session.update", "session", sessionID, summary); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if packageChanged && s.balances != nil {
		s.balances.InvalidateClient(ctx, current.ClientID)
	}
	s.publish(ctx, "session.updated", updated)

	return &UpdateSessionResult{
		Objectives:  updated.Objectives,
		SessionNote: updated.Notes,
		Title:       updated.Title,
	}, nil
}

// DeleteSession removes the row and releases any held reservation in the
// same transaction. Returns whether a package slot was released.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID int64) (bool, error) {
	if s.db == nil {
		return false, ErrNotConfigured
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPackageRepo := repository.NewPackageRepository(tx)
	txAuditRepo := repository.NewAuditRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrSessionNotFound
		}
		return false, err
	}

	released := false
	if session.PackageID != nil {
		if _, err := txPackageRepo.AdjustUsedCredits(ctx, *session.PackageID, -1); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, ErrPackageNotFound
			}
			return false, err
		}
		released = true
	}

	if err := txSessionRepo.Delete(ctx, sessionID); err != nil {
		return false, err
	}

	summary := "deleted; no package slot held"
	if released {
		summary = fmt.Sprintf("deleted; released 1 credit to package %d", *session.PackageID)
	}
	if _, err := txAuditRepo.Append(ctx, "session.delete", "session", sessionID, summary); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	if released && s.balances != nil {
		s.balances.InvalidateClient(ctx, session.ClientID)
	}
	s.publish(ctx, "session.deleted", session)

	return released, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	return s.sessionRepo.List(ctx, filter)
}

// resolveTrainer picks the explicit trainer when one is named, otherwise the
// first trainer or owner account, otherwise falls through to the
// auto-provisioning policy.
func (s *SessionService) resolveTrainer(ctx context.Context, users *repository.UserRepository, explicit *int64) (int64, error) {
	if explicit != nil {
		trainer, err := users.GetByID(ctx, *explicit)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrTrainerNotFound
			}
			return 0, err
		}
		return trainer.ID, nil
	}

	first, err := users.FirstByRoles(ctx, "trainer", "owner")
	if err == nil {
		return first.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	return s.ResolveOrCreateDefaultTrainer(ctx, users)
}

// ResolveOrCreateDefaultTrainer provisions a solo-trainer account when no
// trainer exists at all. Disabled via AUTO_PROVISION_TRAINER=false, in which
// case session creation fails validation instead of silently creating users.
func (s *SessionService) ResolveOrCreateDefaultTrainer(ctx context.Context, users *repository.UserRepository) (int64, error) {
	if !s.autoProvisionTrainer {
		return 0, fmt.Errorf("%w: no trainer available", ErrInvalidInput)
	}

	existing, err := users.GetByEmail(ctx, s.defaultTrainerEmail)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// The account is never meant to be logged into directly, so the
	// password is an unguessable throwaway.
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return 0, err
	}
	trainer := &models.User{
		Email:        s.defaultTrainerEmail,
		PasswordHash: hash,
		Name:         "Solo Trainer",
		Role:         "trainer",
	}
	if err := users.CreateUser(ctx, trainer); err != nil {
		return 0, err
	}
	return trainer.ID, nil
}

// reservePackage resolves the target ledger entry (materializing a template
// into a client-owned clone when needed), checks ownership, and takes one
// credit. Never checks used against total: over-booking is allowed.
func reservePackage(ctx context.Context, packages *repository.PackageRepository, packageID, clientID int64) (*models.Package, error) {
	pkg, err := reservePackageTarget(ctx, packages, packageID, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := packages.AdjustUsedCredits(ctx, pkg.ID, 1); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

// reservePackageTarget resolves which row a reservation would land on
// without touching its counter.
func reservePackageTarget(ctx context.Context, packages *repository.PackageRepository, packageID, clientID int64) (*models.Package, error) {
	pkg, err := packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	if pkg.IsTemplate {
		clone, err := packages.Clone(ctx, pkg, clientID)
		if err != nil {
			return nil, err
		}
		return clone, nil
	}

	if pkg.ClientID == nil || *pkg.ClientID != clientID {
		return nil, ErrPackageClientMismatch
	}
	return pkg, nil
}

func samePackage(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeSessionStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "scheduled":
		return models.SessionStatusScheduled, nil
	case "in_progress", "in-progress", "in progress":
		return models.SessionStatusInProgress, nil
	case "done":
		return models.SessionStatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}

func patchFieldNames(patch SessionPatch) []string {
	names := []string{}
	if patch.Objective != nil {
		names = append(names, "objective")
	}
	if patch.Objectives != nil {
		names = append(names, "objectives")
	}
	if patch.Note != nil {
		names = append(names, "note")
	}
	if patch.Title != nil {
		names = append(names, "title")
	}
	if patch.StartTime != nil {
		names = append(names, "startTime")
	}
	if patch.DurationMinutes != nil {
		names = append(names, "durationMinutes")
	}
	if patch.Location != nil {
		names = append(names, "location")
	}
	if patch.Status != nil {
		names = append(names, "status")
	}
	if patch.TrainerID != nil {
		names = append(names, "trainerId")
	}
	if patch.TravelMinutes != nil {
		names = append(names, "travelMinutes")
	}
	if patch.BufferMinutes != nil {
		names = append(names, "bufferMinutes")
	}
	if patch.SetPackage {
		names = append(names, "packageId")
	}
	if patch.LinkNoteToDog != nil {
		names = append(names, "linkNoteToDog")
	}
	return names
}

func (s *SessionService) publish(ctx context.Context, action string, session *models.Session) {
	if s.events == nil || session == nil {
		return
	}
	event := events.SessionEvent{
		Action:    action,
		SessionID: session.ID,
		DogID:     session.DogID,
		ClientID:  session.ClientID,
		PackageID: session.PackageID,
	}
	s.events.Publish(ctx, event)
}
