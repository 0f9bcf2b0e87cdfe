// internal/workers/query-intent/extract-query-components/handler.go
package extractquerycomponents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

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
	TaskType = "extract-query-components"
)

type Handler struct {
	config       *Config
	matcher      *intent.Matcher
	vocab        vocabulary.Set
	input        *validation.Validator
	output       *validation.Validator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

// NewHandler compiles the activity schemas from reg. obs may be nil.
func NewHandler(config *Config, vocab vocabulary.Set, reg *registry.ActivityRegistry, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	activity, err := reg.Activity(TaskType)
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

	handlerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		matcher:      intent.NewMatcher(config.FuzzyThreshold),
		vocab:        vocab,
		input:        input,
		output:       output,
		errorHandler: errors.NewErrorHandler(handlerLog),
		obs:          obs,
		logger:       handlerLog,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
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
	if err := ctx.Err(); err != nil {
		return nil, errors.NewTimeoutError(TaskType, err)
	}

	requestID := uuid.NewString()
	raw := h.matcher.Extract(input.Query, h.vocab.Entities, h.vocab.Metrics)

	output := &Output{RawMatch: raw}
	if err := validate(h.output, output, errors.NewOutputValidationFailedError); err != nil {
		return nil, err
	}

	h.logger.Info("query components extracted", map[string]interface{}{
		"requestId":         requestID,
		"entity":            raw.Entity,
		"entityStrategy":    string(raw.EntityStrategy),
		"parameter":         raw.Parameter,
		"parameterStrategy": string(raw.ParameterStrategy),
		"startToken":        raw.StartDate,
		"endToken":          raw.EndDate,
		"complete":          raw.Complete(),
	})

	return output, nil
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
