package runner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"taskagent/internal/adapter/action"
	"taskagent/internal/application/port/input"
	"taskagent/internal/application/port/output"
	"taskagent/internal/application/service"
	"taskagent/internal/domain/entity"
	"taskagent/internal/infrastructure/prompts"
)

const (
	defaultMaxSteps = 15

	correctiveNoAction = "Please specify a concrete action to perform, written as a call like navigate(), click(), type()."
	completedNote      = "Task completed"
	stepLimitNote      = "The task reached the step limit. Partial progress was recorded."
)

var _ input.TaskRunner = (*Runner)(nil)

type Config struct {
	// SystemPromptTemplate defaults to the embedded template.
	SystemPromptTemplate string
	// CompletionPhrases is the injectable completion vocabulary; empty
	// means the default list.
	CompletionPhrases []string
}

// Runner drives the agent loop: it alternates LLM calls and browser actions
// until the task completes, fails, or exhausts its step budget.
type Runner struct {
	browsers output.BrowserFactory
	llms     output.LLMFactory
	store    output.TaskStorePort
	shots    output.ScreenshotStorePort
	logger   output.LoggerPort
	cfg      Config

	// custom actions contributed by external code before tasks start; they
	// share the built-ins' namespace and may override them by name.
	custom []service.Action
}

func New(
	browsers output.BrowserFactory,
	llms output.LLMFactory,
	store output.TaskStorePort,
	shots output.ScreenshotStorePort,
	logger output.LoggerPort,
	cfg Config,
) *Runner {
	if cfg.SystemPromptTemplate == "" {
		cfg.SystemPromptTemplate = prompts.DefaultSystemPrompt
	}
	return &Runner{
		browsers: browsers,
		llms:     llms,
		store:    store,
		shots:    shots,
		logger:   logger,
		cfg:      cfg,
	}
}

// RegisterAction contributes a custom action dispatched like any built-in.
// Must be called before tasks start.
func (r *Runner) RegisterAction(a service.Action) {
	r.custom = append(r.custom, a)
}

// execution is the per-task state of one loop run.
type execution struct {
	inv      entity.TaskInvocation
	result   *entity.ExecutionResult
	vault    *service.Vault
	registry *service.ActionRegistry
	detector *service.CompletionDetector
	browser  output.BrowserPort
	llm      output.LLMPort
	shots    output.ScreenshotStorePort
	logger   output.LoggerPort

	prompt strings.Builder
}

// AddURL implements action.Recorder; first-observed order, duplicates kept.
func (e *execution) AddURL(url string) {
	e.result.URLs = append(e.result.URLs, url)
}

// AddScreenshot implements action.Recorder.
func (e *execution) AddScreenshot(path string) {
	e.result.Screenshots = append(e.result.Screenshots, path)
}

// Run executes one task to completion. A non-nil error is returned only for
// a re-entrancy rejection before any step executes; every failure after the
// loop starts is reported through the result's status and error list.
func (r *Runner) Run(ctx context.Context, inv entity.TaskInvocation) (*entity.ExecutionResult, error) {
	if inv.TaskID == "" {
		inv.TaskID = uuid.NewString()
	}
	if inv.Browser.MaxSteps <= 0 {
		inv.Browser.MaxSteps = defaultMaxSteps
	}

	if err := r.store.Begin(ctx, inv.TaskID, inv.Instructions, inv.Force); err != nil {
		return nil, err
	}

	log := r.logger.WithField("task_id", inv.TaskID)
	log.Info("task started", "provider", inv.LLM.Provider, "model", inv.LLM.Model, "max_steps", inv.Browser.MaxSteps)

	result := entity.NewExecutionResult()

	e := &execution{
		inv:      inv,
		result:   result,
		vault:    service.NewVault(),
		registry: service.NewActionRegistry(),
		detector: service.NewCompletionDetector(r.cfg.CompletionPhrases),
		shots:    r.shots,
		logger:   log,
	}
	e.vault.Add(inv.SensitiveData)

	tempDir, err := os.MkdirTemp("", "taskagent-*")
	if err != nil {
		return r.fail(ctx, inv.TaskID, result, fmt.Errorf("create temp dir: %w", err)), nil
	}
	defer os.RemoveAll(tempDir)

	browser, err := r.browsers.New(ctx, inv.Browser)
	if err != nil {
		return r.fail(ctx, inv.TaskID, result, fmt.Errorf("create browser session: %w", err)), nil
	}
	defer browser.Close()
	e.browser = browser

	if inv.Browser.SaveRecording {
		log.Warn("video recording is not supported by this browser backend; the screenshot trail covers the run")
	}

	e.llm = r.llms.New(inv.LLM)

	action.RegisterBuiltins(e.registry, action.Deps{
		Config:  inv.Browser,
		Vault:   e.vault,
		Shots:   r.shots,
		Rec:     e,
		Logger:  log,
		TaskID:  inv.TaskID,
		TempDir: tempDir,
	})
	for _, a := range r.custom {
		e.registry.Register(a)
	}

	system, err := prompts.GenerateSystemPrompt(r.cfg.SystemPromptTemplate, e.registry.All(), e.vault.Describe())
	if err != nil {
		return r.fail(ctx, inv.TaskID, result, fmt.Errorf("build system prompt: %w", err)), nil
	}
	e.prompt.WriteString(system)
	e.prompt.WriteString(e.vault.Mask(inv.Instructions))

	for step := 1; step <= inv.Browser.MaxSteps; step++ {
		// Cancellation is cooperative and only observed here, between steps.
		if ctx.Err() != nil {
			msg := fmt.Sprintf("task canceled at step %d: %v", step, ctx.Err())
			result.Errors = append(result.Errors, msg)
			result.Status = entity.TaskStatusFailed
			result.Output = msg
			break
		}
		if e.step(ctx, step) {
			break
		}
	}

	if result.Status == entity.TaskStatusRunning {
		// Hitting the ceiling is partial progress, not a failure.
		result.Status = entity.TaskStatusFinished
		result.Output = stepLimitNote
	}

	if err := r.store.SaveResult(ctx, inv.TaskID, result); err != nil {
		log.Error("save result failed", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("persist result: %v", err))
	}

	log.Info("task done", "status", result.Status, "steps", len(result.Steps), "errors", len(result.Errors))
	return result, nil
}

// step runs one loop iteration and reports whether the task reached a
// terminal state. Any panic inside the step is caught at this boundary: the
// error is recorded, a corrective note is appended, and the loop continues.
func (e *execution) step(ctx context.Context, step int) (done bool) {
	defer func() {
		if p := recover(); p != nil {
			msg := fmt.Sprintf("error in step %d: %v", step, p)
			e.logger.Error("step panic", "step", step, "error", msg)
			e.result.Errors = append(e.result.Errors, e.vault.Mask(msg))
			e.appendPrompt(fmt.Sprintf("An error occurred: %s. Please try a different approach.", msg))
			done = false
		}
	}()

	var shot *entity.Screenshot
	if e.inv.Browser.UseVision {
		var err error
		shot, err = e.browser.Screenshot(ctx, false)
		if err != nil {
			msg := fmt.Sprintf("error in step %d: screenshot for vision failed: %v", step, err)
			e.result.Errors = append(e.result.Errors, msg)
			e.appendPrompt(fmt.Sprintf("An error occurred: %s. Please try a different approach.", msg))
			return false
		}
	}

	reply := e.llm.Complete(ctx, output.CompletionRequest{
		Prompt:    e.prompt.String(),
		Image:     shot,
		UseVision: e.inv.Browser.UseVision,
	})

	invocations := service.ParseInvocations(reply)
	if len(invocations) == 0 {
		return e.handleNoAction(step, reply)
	}

	chosen, ok := e.firstRecognized(invocations)
	if !ok {
		// Nothing executable, but the turn still leaves a trace: the
		// reasoning goes into the step record and the page state is
		// captured as usual.
		e.result.Steps = append(e.result.Steps, entity.StepRecord{
			Step:      step,
			Reasoning: e.vault.Mask(reply),
		})
		e.supplementaryScreenshot(ctx, step)
		return false
	}

	rendered := e.vault.Mask(chosen.Render())
	e.logger.Info("executing action", "step", step, "action", rendered)

	res := e.registry.Invoke(ctx, chosen.Name, chosen.Args, e.browser)
	payload := e.vault.Mask(res.Payload())
	if !res.Success {
		e.result.Errors = append(e.result.Errors, payload)
	}

	e.appendPrompt(fmt.Sprintf("Action: %s\nResult: %s", rendered, payload))
	e.result.Steps = append(e.result.Steps, entity.StepRecord{
		Step:             step,
		Reasoning:        e.vault.Mask(reply),
		ChosenActionText: rendered,
	})

	// Keep a visual record of every step; the screenshot action already
	// saved its own capture.
	if chosen.Name != "screenshot" {
		e.supplementaryScreenshot(ctx, step)
	}
	return false
}

// handleNoAction covers replies with no recognized call syntax: either the
// agent is announcing completion, or it needs a nudge toward a concrete
// action. Neither consumes a browser action, but the step still counts.
func (e *execution) handleNoAction(step int, reply string) bool {
	if e.detector.Detect(reply) {
		e.result.Output = e.vault.Mask(reply)
		e.result.Steps = append(e.result.Steps, entity.StepRecord{
			Step:             step,
			Reasoning:        e.vault.Mask(reply),
			ChosenActionText: completedNote,
		})
		e.result.Status = entity.TaskStatusFinished
		return true
	}
	e.appendPrompt(correctiveNoAction)
	return false
}

// firstRecognized picks the first invocation the registry knows; one
// browser side effect per LLM turn. Unknown names seen before it are
// surfaced as errors so the LLM can correct itself.
func (e *execution) firstRecognized(invocations []entity.ActionInvocation) (entity.ActionInvocation, bool) {
	for _, inv := range invocations {
		if _, ok := e.registry.Resolve(inv.Name); ok {
			return inv, true
		}
		msg := fmt.Sprintf("unknown action: %s", inv.Name)
		e.result.Errors = append(e.result.Errors, msg)
		e.appendPrompt(fmt.Sprintf("Error: %s. Please use one of the listed actions.", msg))
	}
	return entity.ActionInvocation{}, false
}

func (e *execution) supplementaryScreenshot(ctx context.Context, step int) {
	shot, err := e.browser.Screenshot(ctx, e.inv.Browser.FullPageScreenshot)
	if err != nil {
		e.logger.Warn("supplementary screenshot failed", "step", step, "error", err)
		return
	}
	path, err := e.shots.Save(e.inv.TaskID, shot.Data)
	if err != nil {
		e.logger.Warn("saving supplementary screenshot failed", "step", step, "error", err)
		return
	}
	e.AddScreenshot(path)
}

func (e *execution) appendPrompt(text string) {
	e.prompt.WriteString("\n\n")
	e.prompt.WriteString(text)
}

// fail finalizes a task that broke outside the step boundary: the setup
// error is the sole error and the output.
func (r *Runner) fail(ctx context.Context, taskID string, result *entity.ExecutionResult, err error) *entity.ExecutionResult {
	r.logger.WithField("task_id", taskID).Error("task setup failed", "error", err)
	result.Status = entity.TaskStatusFailed
	result.Errors = append(result.Errors, err.Error())
	result.Output = err.Error()
	if saveErr := r.store.SaveResult(ctx, taskID, result); saveErr != nil {
		r.logger.Error("save result failed", "task_id", taskID, "error", saveErr)
	}
	return result
}
