package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"notes-agent/internal/domain"
	"notes-agent/internal/presentation"
	"notes-agent/internal/usecase"
)

type stubUseCase struct {
	out usecase.AskOutput
	err error
	in  usecase.AskInput
}

func (s *stubUseCase) Ask(_ context.Context, in usecase.AskInput) (usecase.AskOutput, error) {
	s.in = in
	out := s.out
	if out.RequestID == "" {
		out.RequestID = in.RequestID
	}
	return out, s.err
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/ask",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Response: domain.Response{
		Message: domain.MessageGetSuccess,
		Note:    &domain.Note{Title: "Groceries", Text: "milk, eggs"},
	}}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"text":"show my groceries note"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "show my groceries note", uc.in.Text)

	corrID := resp.Headers["X-Correlation-Id"]
	require.NotEmpty(t, corrID)
	require.Equal(t, corrID, uc.in.RequestID)

	out := parseBody[askResponse](t, resp.Body)
	require.Equal(t, "GET:SUCCESS", out.Message)
	require.Equal(t, &domain.Note{Title: "Groceries", Text: "milk, eggs"}, out.Note)
	require.Nil(t, out.Titles)
	require.Equal(t, presentation.KindSuccess, out.View.Kind)
	require.Equal(t, "Groceries", out.View.Title)
	require.Equal(t, corrID, out.RequestID)
}

func TestHandle_EmptyListKeepsEmptyArray(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Response: domain.Response{Message: domain.MessageListSuccess, Titles: []string{}}}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"text":"list"}`))
	require.NoError(t, err)
	require.Contains(t, resp.Body, `"titles":[]`)
	require.Contains(t, resp.Body, `"notice":"No notes available yet."`)
}

func TestHandle_InvalidBody(t *testing.T) {
	for _, body := range []string{`not-json`, `{"text":"a","extra":1}`, `{"text":"a"} {}`} {
		uc := &stubUseCase{}
		h, err := NewHandler(uc)
		require.NoError(t, err)

		resp, err := h.Handle(context.Background(), makeEvent(body))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		out := parseBody[errorResponse](t, resp.Body)
		require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
		require.Equal(t, presentation.KindError, out.View.Kind)
		require.Empty(t, uc.in.Text)
	}
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	h, err := NewHandler(&stubUseCase{})
	require.NoError(t, err)

	event := makeEvent("")
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: usecase.ReasonTextTooLong}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput)},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: usecase.ReasonIntentRateLimited}, status: http.StatusTooManyRequests, code: string(usecase.ErrorRateLimited)},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: usecase.ReasonAgentError}, status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: usecase.ReasonStoreInsertError}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubUseCase{err: tc.err}
			h, err := NewHandler(uc)
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(`{"text":"list my notes"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
			require.True(t, strings.HasPrefix(out.View.Message, "Error: "))
		})
	}
}

func TestHandle_EmptyTextShowsPrompt(t *testing.T) {
	uc := &stubUseCase{err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: usecase.ReasonEmptyText}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"text":"  "}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "Please enter something.", out.View.Message)
	require.Equal(t, usecase.ReasonEmptyText, out.Reason)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Response: domain.Response{Message: domain.MessageCreated}}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	event := makeEvent(`{"text":"create a note"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
	require.Equal(t, "corr-123", uc.in.RequestID)
}

func TestFiber_Ask(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Response: domain.Response{
		Message: domain.MessageListSuccess,
		Titles:  []string{"Alpha", "Mid"},
	}}}
	h, err := NewHandler(uc)
	require.NoError(t, err)
	app := NewApp(h, false)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text":"list"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", "corr-fiber")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "corr-fiber", resp.Header.Get("X-Correlation-Id"))
	require.Equal(t, "corr-fiber", uc.in.RequestID)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := parseBody[askResponse](t, string(raw))
	require.Equal(t, []string{"Alpha", "Mid"}, out.Titles)
	require.Equal(t, []string{"Alpha", "Mid"}, out.View.Items)
}

func TestFiber_GeneratesCorrelationID(t *testing.T) {
	uc := &stubUseCase{out: usecase.AskOutput{Response: domain.Response{Message: domain.MessageNotRecognized}}}
	h, err := NewHandler(uc)
	require.NoError(t, err)
	app := NewApp(h, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text":"dance"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-Id"))
	require.Equal(t, resp.Header.Get("X-Correlation-Id"), uc.in.RequestID)
}

func TestFiber_ErrorStatus(t *testing.T) {
	uc := &stubUseCase{err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: usecase.ReasonAgentRateLimited}}
	h, err := NewHandler(uc)
	require.NoError(t, err)
	app := NewApp(h, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text":"list"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestFiber_Healthz(t *testing.T) {
	h, err := NewHandler(&stubUseCase{})
	require.NoError(t, err)

	resp, err := NewApp(h, false).Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
