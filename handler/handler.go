package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-agent/internal/domain"
	"notes-agent/internal/presentation"
	"notes-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// maxBodyBytes caps request bodies before decoding.
const maxBodyBytes = 64 << 10

type UseCase interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
}

type askRequest struct {
	Text string `json:"text"`
}

type askResponse struct {
	Message   string            `json:"message"`
	Note      *domain.Note      `json:"note"`
	Titles    []string          `json:"titles"`
	View      presentation.View `json:"view"`
	RequestID string            `json:"requestId"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	View   presentation.View `json:"view"`
}

// Handler serves POST /ask for both the Lambda runtime and the HTTP server.
type Handler struct {
	uc     UseCase
	logger *zap.Logger
}

type Option func(*Handler)

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(uc UseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{uc: uc, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle is the API Gateway proxy entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = uuid.NewString()
	}

	var status int
	var payload any
	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodPost {
		status, payload = http.StatusMethodNotAllowed, errorResponse{
			Error: string(usecase.ErrorInvalidInput),
			View:  presentation.RenderError(fmt.Errorf("method %s not allowed", req.HTTPMethod)),
		}
	} else {
		status, payload = h.serve(ctx, corrID, []byte(req.Body))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("handler: marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}, nil
}

// serve decodes body, runs the use case and returns the status and JSON
// payload to send.
func (h *Handler) serve(ctx context.Context, corrID string, body []byte) (int, any) {
	log := h.logger.With(zap.String("correlation_id", corrID))

	in, err := decodeAskRequest(body)
	if err != nil {
		log.Info("rejected request body", zap.Error(err))
		return http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "invalid_body",
			View:   presentation.RenderError(err),
		}
	}

	out, err := h.uc.Ask(ctx, usecase.AskInput{Text: in.Text, RequestID: corrID})
	if err != nil {
		status, resp := errorPayload(err)
		if status >= http.StatusInternalServerError {
			log.Error("ask failed", zap.Int("status", status), zap.Error(err))
		} else {
			log.Info("ask rejected", zap.Int("status", status), zap.Error(err))
		}
		return status, resp
	}

	return http.StatusOK, askResponse{
		Message:   out.Response.Message,
		Note:      out.Response.Note,
		Titles:    out.Response.Titles,
		View:      presentation.Render(out.Response),
		RequestID: out.RequestID,
	}
}

func decodeAskRequest(body []byte) (askRequest, error) {
	var in askRequest
	dec := json.NewDecoder(io.LimitReader(bytes.NewReader(body), maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return askRequest{}, fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return askRequest{}, errors.New("decode request body: unexpected trailing data")
	}
	return in, nil
}

func errorPayload(err error) (int, errorResponse) {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		return http.StatusInternalServerError, errorResponse{
			Error: string(usecase.ErrorInternal),
			View:  presentation.RenderError(err),
		}
	}
	view := presentation.RenderError(err)
	if ue.Reason == usecase.ReasonEmptyText {
		view = presentation.RenderInputError()
	}
	return statusFor(ue.Code), errorResponse{Error: string(ue.Code), Reason: ue.Reason, View: view}
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
