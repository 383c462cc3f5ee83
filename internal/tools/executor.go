package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/tracer"
)

var errDecodeInput = errors.New("decode tool input")

// Executor runs tool calls requested by the model. It never returns an error:
// every failure becomes an ErrorMarker so the conversation can continue.
type Executor struct {
	registry *Registry
}

func NewExecutor(r *Registry) *Executor {
	return &Executor{registry: r}
}

// Execute validates the call's arguments, runs the implementation once and
// validates what it returned. Failed calls are not retried.
func (e *Executor) Execute(ctx context.Context, call llm.ToolCall) Result {
	ctx, span := tracer.StartSpan(ctx, "tool.execute")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("tool.name", call.Name), tracer.StringAttr("tool.call_id", call.ID))

	start := time.Now()
	res := e.execute(ctx, call)

	ev := log.Debug()
	if res.Err != nil {
		ev = log.Warn().Str("code", string(res.Err.Code))
		tracer.RecordError(span, fmt.Errorf("%s: %s", res.Err.Code, res.Err.Message))
	} else {
		tracer.SetOK(span)
	}
	ev.Str("tool", call.Name).
		Str("call_id", call.ID).
		Dur("duration", time.Since(start)).
		Bool("ok", res.OK()).
		Msg("tool executed")
	return res
}

func (e *Executor) execute(ctx context.Context, call llm.ToolCall) Result {
	res := Result{CallID: call.ID, ToolName: call.Name}

	tool, ok := e.registry.Lookup(call.Name)
	if !ok {
		res.Err = &ErrorMarker{Code: CodeUnknownTool, Message: fmt.Sprintf("unknown tool: %s", call.Name)}
		return res
	}

	input, err := schema.Validate(tool.InputSchema, []byte(call.Arguments))
	if err != nil {
		res.Err = markerFromValidation(CodeInvalidInput, "invalid arguments for "+tool.Name, err)
		return res
	}

	out, err := invoke(ctx, tool, input)
	if err != nil {
		var failure *Failure
		switch {
		case errors.As(err, &failure):
			res.Err = &ErrorMarker{Code: ErrorCode(failure.Code), Message: failure.Message}
		case errors.Is(err, errDecodeInput):
			res.Err = &ErrorMarker{Code: CodeInvalidInput, Message: "invalid arguments for " + tool.Name}
		default:
			log.Error().Err(err).Str("tool", tool.Name).Msg("tool execution error")
			res.Err = &ErrorMarker{Code: CodeUnavailable, Message: UnavailableMessage}
		}
		return res
	}

	validated, err := schema.Validate(tool.OutputSchema, out)
	if err != nil {
		log.Warn().Err(err).Str("tool", tool.Name).Msg("tool returned malformed output")
		res.Err = markerFromValidation(CodeInvalidOutput, tool.Name+" returned an unexpected response", err)
		return res
	}
	res.Output = validated
	return res
}

func invoke(ctx context.Context, tool Tool, input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name, r)
		}
	}()
	return tool.Execute(ctx, input)
}

func markerFromValidation(code ErrorCode, msg string, err error) *ErrorMarker {
	m := &ErrorMarker{Code: code, Message: msg}
	if ve, ok := schema.AsValidationError(err); ok {
		m.Issues = ve.Issues
	}
	return m
}
