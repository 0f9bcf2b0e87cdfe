// internal/workers/query-intent/build-query-result/handler.go
package buildqueryresult

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/common/metrics"
	"query-intent-workers/internal/common/observability"
	"query-intent-workers/internal/common/validation"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
	"query-intent-workers/pkg/registry"
)

const (
	TaskType = "build-query-result"
)

type Handler struct {
	config       *Config
	builder      *intent.Builder
	vocab        vocabulary.Set
	redis        *redis.Client
	input        *validation.Validator
	output       *validation.Validator
	previous     *validation.Validator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

// HandlerOptions carries the handler's collaborators. Redis and
// Observability are optional.
type HandlerOptions struct {
	Config        *Config
	Builder       *intent.Builder
	Vocabulary    vocabulary.Set
	Redis         *redis.Client
	Registry      *registry.ActivityRegistry
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Config == nil {
		opts.Config = LoadConfig()
	}
	if opts.Builder == nil {
		opts.Builder = intent.NewBuilder()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewStructured("info", "json")
	}

	activity, err := opts.Registry.Activity(TaskType)
	if err != nil {
		return nil, err
	}
	input, err := validation.NewValidator(activity.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("input schema for %s: %w", TaskType, err)
	}
	output, err := validation.NewValidator(activity.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("output schema for %s: %w", TaskType, err)
	}
	listSchema, err := opts.Registry.Definition(registry.DefinitionQueryRecordList)
	if err != nil {
		return nil, err
	}
	previous, err := validation.NewValidator(listSchema)
	if err != nil {
		return nil, fmt.Errorf("record list schema: %w", err)
	}

	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       opts.Config,
		builder:      opts.Builder,
		vocab:        opts.Vocabulary,
		redis:        opts.Redis,
		input:        input,
		output:       output,
		previous:     previous,
		errorHandler: errors.NewErrorHandler(log),
		obs:          opts.Observability,
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), startTime)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}
	if err := validate(h.input, input, errors.NewInvalidInputError); err != nil {
		return nil, err
	}

	today, err := h.referenceDate(input.ReferenceDate)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{"requestId": requestID})
	previous := h.previousRecords(input.PreviousRecords, log)

	key := CacheKey(h.vocab, h.builder.Settings(), today.Format(intent.ISODate), input.Query)
	record, lookup := h.lookupRecord(ctx, key)

	var records intent.QueryResult
	if lookup == cacheHit {
		records = h.builder.Reuse(record, input.Query, previous)
	} else {
		records, err = h.builder.BuildAt(input.Query, h.vocab.Entities, h.vocab.Metrics, previous, today)
		if err != nil {
			var incomplete *intent.IncompleteQueryError
			if stderrors.As(err, &incomplete) {
				return nil, errors.NewIncompleteQueryError(incomplete.Error(), incomplete.MissingEntity, incomplete.MissingParameter)
			}
			return nil, errors.NewInternalError(err)
		}
		if lookup == cacheMiss {
			h.storeRecord(ctx, key, records[0])
		}
	}

	output := &Output{Records: records}
	if err := validate(h.output, output, errors.NewOutputValidationFailedError); err != nil {
		return nil, err
	}

	h.obs.RecordResultSize(ctx, len(records))
	log.Info("query result built", map[string]interface{}{
		"entity":        records[0].Entity,
		"parameter":     records[0].Parameter,
		"startDate":     records[0].StartDate,
		"endDate":       records[0].EndDate,
		"records":       len(records),
		"comparison":    len(records) > 1,
		"cache":         string(lookup),
		"referenceDate": today.Format(intent.ISODate),
	})

	return output, nil
}

func (h *Handler) referenceDate(value string) (time.Time, error) {
	if value == "" {
		return h.builder.Now().In(h.config.Location), nil
	}
	t, err := time.ParseInLocation(intent.ISODate, value, h.config.Location)
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError(fmt.Sprintf("referenceDate: %q is not a calendar date", value))
	}
	return t, nil
}

// previousRecords decodes the records of an earlier build. Anything that does
// not match the record list schema is dropped with a warning.
func (h *Handler) previousRecords(raw json.RawMessage, log logger.Logger) intent.QueryResult {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("dropping unreadable previous records", map[string]interface{}{"error": err.Error()})
		return nil
	}

	result, err := h.previous.Validate(doc)
	if err != nil || !result.Valid {
		fields := map[string]interface{}{}
		if result != nil {
			fields["errors"] = result.GetErrorMessages()
		}
		log.Warn("dropping invalid previous records", fields)
		return nil
	}

	var previous intent.QueryResult
	if err := json.Unmarshal(raw, &previous); err != nil {
		log.Warn("dropping unreadable previous records", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return previous
}

func validate(v *validation.Validator, doc interface{}, wrap func(string) *errors.StandardError) error {
	result, err := v.Validate(doc)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !result.Valid {
		return wrap(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	code := string(errors.FromError(err).Code)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")

	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
