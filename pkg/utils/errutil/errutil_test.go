package errutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestHandleHTTP(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"client error", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			err := goerr.New("something failed", goerr.V("key", "value"))

			errutil.HandleHTTP(context.Background(), w, err, tt.status)

			gt.Number(t, w.Code).Equal(tt.status)
			gt.String(t, w.Header().Get("Content-Type")).Equal("application/json")

			var body map[string]string
			gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
			gt.String(t, body["error"]).Contains("something failed")
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, nil, http.StatusInternalServerError)
		gt.Number(t, w.Body.Len()).Equal(0)
	})
}

func TestHandleReportsValuesToSentry(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()

	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	errutil.Handle(ctx, goerr.New("sync failed", goerr.V("employee_id", "e-1")), "test")

	gt.Array(t, events).Length(1).Required()
	values, ok := events[0].Contexts["goerr"]
	gt.Bool(t, ok).True()
	gt.Value(t, values["employee_id"]).Equal("e-1")
}
