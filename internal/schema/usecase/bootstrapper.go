package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/domain/repository"
	"tasky/internal/shared/logger"
	"tasky/internal/shared/utils"

	"golang.org/x/sync/errgroup"
)

const releaseTimeout = 5 * time.Second

// SchemaUsecaseInterface is what the HTTP adapter and the CLI depend on
type SchemaUsecaseInterface interface {
	EnsureCollections(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error)
	Plan(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error)
}

// BootstrapperConfig tunes a SchemaBootstrapper
type BootstrapperConfig struct {
	Policy model.ConflictPolicy
	// Concurrency bounds how many collections are handled at once. Values below 1 mean sequential.
	Concurrency int
	// LockKey names the distributed lock; only used when a Locker is set.
	LockKey string
}

// SchemaBootstrapper makes sure declared collections exist with their validators
type SchemaBootstrapper struct {
	catalog repository.CollectionCatalog
	locker  repository.Locker
	logger  logger.Logger
	config  BootstrapperConfig
}

// NewSchemaBootstrapper creates a bootstrapper. locker may be nil.
func NewSchemaBootstrapper(catalog repository.CollectionCatalog, locker repository.Locker, log logger.Logger, cfg BootstrapperConfig) *SchemaBootstrapper {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg.Policy == "" {
		cfg.Policy = model.PolicyStrict
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "tasky:schema-bootstrap"
	}
	return &SchemaBootstrapper{
		catalog: catalog,
		locker:  locker,
		logger:  log.WithComponent("schema-bootstrapper"),
		config:  cfg,
	}
}

// EnsureCollections creates every missing collection with its derived validator.
// Existing collections with an equivalent validator count as satisfied; a
// conflicting validator is reported and left untouched. One collection failing
// never stops the others. The returned error is a *model.BootstrapError when
// any collection failed, or a precondition error (duplicate or invalid spec,
// lock contention) in which case the report is nil and nothing was touched.
func (b *SchemaBootstrapper) EnsureCollections(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error) {
	return b.execute(ctx, specs, false)
}

// Plan inspects every collection and reports what EnsureCollections would do
// without creating anything.
func (b *SchemaBootstrapper) Plan(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error) {
	return b.execute(ctx, specs, true)
}

func (b *SchemaBootstrapper) execute(ctx context.Context, specs []model.CollectionSpec, dryRun bool) (*model.Report, error) {
	if err := validateBatch(specs); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return &model.Report{Results: []model.SpecResult{}, DryRun: dryRun}, nil
	}

	if !dryRun && b.locker != nil {
		release, err := b.locker.Acquire(ctx, b.config.LockKey)
		if err != nil {
			return nil, fmt.Errorf("acquire bootstrap lock: %w", err)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := release(releaseCtx); err != nil {
				b.logger.Warnf("Failed to release bootstrap lock %s: %v", b.config.LockKey, err)
			}
		}()
	}

	results := make([]model.SpecResult, len(specs))
	var g errgroup.Group
	g.SetLimit(b.config.Concurrency)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			results[i] = b.ensureOne(ctx, spec, dryRun)
			return nil
		})
	}
	_ = g.Wait()

	report := &model.Report{Results: results, DryRun: dryRun}
	b.logger.WithFields(map[string]interface{}{
		"created":   report.Count(model.OutcomeCreated),
		"satisfied": report.Count(model.OutcomeAlreadySatisfied),
		"conflicts": report.Count(model.OutcomeConflict),
		"failed":    report.Count(model.OutcomeFailed),
		"dry_run":   dryRun,
	}).Info("Schema bootstrap finished")

	return report, report.Err()
}

func validateBatch(specs []model.CollectionSpec) error {
	if err := model.CheckUniqueNames(specs); err != nil {
		return err
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b *SchemaBootstrapper) ensureOne(ctx context.Context, spec model.CollectionSpec, dryRun bool) model.SpecResult {
	start := time.Now()
	ctx = utils.WithCollection(ctx, spec.Name)
	log := b.logger.WithContext(ctx)

	result := b.reconcile(ctx, spec, dryRun)
	result.Collection = spec.Name
	result.Duration = time.Since(start)
	if result.Err != nil {
		result.Error = result.Err.Error()
	}

	switch result.Outcome {
	case model.OutcomeCreated:
		log.Info("Collection created with validator")
	case model.OutcomeAlreadySatisfied:
		log.Debug("Collection already has the declared validator")
	case model.OutcomeWouldCreate:
		log.Info("Collection would be created")
	case model.OutcomeConflict:
		log.Warnf("Validator conflict left unresolved: %v", result.Err)
	default:
		log.Errorf("Collection bootstrap failed: %v", result.Err)
	}
	return result
}

func (b *SchemaBootstrapper) reconcile(ctx context.Context, spec model.CollectionSpec, dryRun bool) model.SpecResult {
	if err := ctx.Err(); err != nil {
		return failed(spec.Name, err)
	}

	desired := spec.Rule()
	state, err := b.catalog.Inspect(ctx, spec.Name)
	if err != nil {
		return failed(spec.Name, fmt.Errorf("inspect collection: %w", err))
	}

	if !state.Exists {
		if dryRun {
			return model.SpecResult{Outcome: model.OutcomeWouldCreate}
		}

		err := b.catalog.CreateCollection(ctx, spec.Name, desired)
		if err == nil {
			return model.SpecResult{Outcome: model.OutcomeCreated}
		}
		if !errors.Is(err, model.ErrCollectionExists) {
			return failed(spec.Name, err)
		}

		// Lost a race with another creator; judge what it left behind.
		state, err = b.catalog.Inspect(ctx, spec.Name)
		if err != nil {
			return failed(spec.Name, fmt.Errorf("inspect collection after concurrent create: %w", err))
		}
	}

	return b.compare(spec.Name, state, desired)
}

func (b *SchemaBootstrapper) compare(name string, state repository.CollectionState, desired model.ValidationRule) model.SpecResult {
	if state.Opaque {
		return conflict(&model.ValidationConflictError{
			Collection: name,
			Reason:     "existing validator is not a plain $jsonSchema document",
		})
	}
	if state.Unenforced != "" {
		return conflict(&model.ValidationConflictError{
			Collection: name,
			Reason:     "existing validator is not enforced: " + state.Unenforced,
		})
	}

	existing := model.ValidationRule{}
	if state.Validator != nil {
		existing = *state.Validator
	}

	ok, diff := model.Compatible(existing, desired, b.config.Policy)
	if ok {
		return model.SpecResult{Outcome: model.OutcomeAlreadySatisfied}
	}

	reason := "required fields or field types differ"
	if state.Validator == nil {
		reason = "collection has no validator"
	}
	return conflict(&model.ValidationConflictError{Collection: name, Reason: reason, Diff: diff})
}

func failed(name string, err error) model.SpecResult {
	return model.SpecResult{
		Outcome: model.OutcomeFailed,
		Err:     &model.CollectionCreationError{Collection: name, Err: err},
	}
}

func conflict(err *model.ValidationConflictError) model.SpecResult {
	return model.SpecResult{Outcome: model.OutcomeConflict, Err: err, Diff: err.Diff}
}
