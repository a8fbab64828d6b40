package processor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	apperr "loadbot/internal/errors"
	"loadbot/internal/record"
	"loadbot/internal/transport"
)

var sample = record.Record{
	VehicleNum:    "MH12AB1234",
	Destination:   "PUNE",
	Weight:        "25",
	SONo:          "1234567890",
	PhoneNum:      "9876543210",
	DriverLicense: "4521",
	DriverName:    "RAM KUMAR",
}

var origin = transport.MessageRef{ChatID: "-1001", MessageID: 42, SenderID: "7"}

func TestEncodeRequest(t *testing.T) {
	body, err := EncodeRequest("-1001", sample, origin)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	doc := gjson.ParseBytes(body)
	if got := doc.Get("vehicle_num").String(); got != "MH12AB1234" {
		t.Errorf("expected vehicle_num 'MH12AB1234' but got %q", got)
	}
	if got := doc.Get("product_type"); got.Type != gjson.Null || !got.Exists() {
		t.Errorf("expected product_type to be null but got %s", got.Raw)
	}
	if got := doc.Get("chat_id").String(); got != "-1001" {
		t.Errorf("expected chat_id '-1001' but got %q", got)
	}
	if got := doc.Get("message_key.message_id").Int(); got != 42 {
		t.Errorf("expected message_key.message_id 42 but got %d", got)
	}
}

func TestProcessSuccess(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST but got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type but got %q", ct)
		}
		received, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"status":"success","processed_data":{"actual_quantity":"24.5"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Process(context.Background(), "-1001", sample, origin)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if res.ActualWeight != "24.5" {
		t.Errorf("expected actual weight '24.5' but got %q", res.ActualWeight)
	}
	if got := gjson.GetBytes(received, "so_no").String(); got != "1234567890" {
		t.Errorf("expected so_no to reach the processor but got %q", got)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name           string
		code           int
		body           string
		expectErr      bool
		expectedActual string
		expectedDetail string
	}{
		{"actual quantity", 200, `{"status":"success","processed_data":{"actual_quantity":20,"weight":"25"}}`, false, "20", ""},
		{"weight fallback", 200, `{"status":"success","processed_data":{"weight":"22"}}`, false, "22", ""},
		{"requested fallback", 200, `{"status":"success"}`, false, "25", ""},
		{"error message", 500, `{"status":"error","message":"SO not found"}`, true, "", "SO not found"},
		{"error field", 400, `{"error":"bad vehicle"}`, true, "", "bad vehicle"},
		{"bare status code", 502, `<html>bad gateway</html>`, true, "", "Request failed with status code 502"},
		{"2xx without success", 200, `{"status":"queued"}`, true, "", "Unexpected response from processor"},
		{"2xx error status", 200, `{"status":"error","message":"portal down"}`, true, "", "portal down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResponse(tt.code, []byte(tt.body), "25")
			if tt.expectErr {
				if !apperr.IsDispatchFailure(err) {
					t.Fatalf("expected DispatchError but got %v", err)
				}
				if got := apperr.DetailOf(err); got != tt.expectedDetail {
					t.Errorf("expected detail %q but got %q", tt.expectedDetail, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if res.ActualWeight != tt.expectedActual {
				t.Errorf("expected actual %q but got %q", tt.expectedActual, res.ActualWeight)
			}
		})
	}
}

func TestProcessTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond)
	_, err := c.Process(context.Background(), "-1001", sample, origin)
	if !apperr.IsDispatchFailure(err) {
		t.Fatalf("expected timeout to be a DispatchError but got %v", err)
	}
}

func TestProcessUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.Process(context.Background(), "-1001", sample, origin)
	if !apperr.IsDispatchFailure(err) {
		t.Fatalf("expected DispatchError but got %v", err)
	}
	if apperr.DetailOf(err) == "" {
		t.Error("expected transport error text as detail")
	}
}

func TestSuccessText(t *testing.T) {
	tests := []struct {
		requested string
		actual    string
		expected  string
	}{
		{"25", "25", "Done ✅"},
		{"25", "25.005", "Done ✅"},
		{"25", "20", "AP done for 20 MT to load 25 MT ✅"},
		{"25.5", "24", "AP done for 24 MT to load 25.5 MT ✅"},
		{"25", "n/a", "Done ✅"},
	}

	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.actual, func(t *testing.T) {
			got := SuccessText(&Result{RequestedWeight: tt.requested, ActualWeight: tt.actual})
			if got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestFailureText(t *testing.T) {
	err := apperr.NewDispatchError("processor returned status 500", "SO not found", nil)
	expected := "❌ *Processing Failed*\n\n*Error:* SO not found"
	if got := FailureText(err); got != expected {
		t.Errorf("expected %q but got %q", expected, got)
	}
}
