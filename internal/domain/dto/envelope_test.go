package dto

import (
	"encoding/json"
	"testing"
)

func TestEnvelope_JSONShape(t *testing.T) {
	cases := []struct {
		name string
		env  Envelope
		want string
	}{
		{
			name: "success",
			env:  Success("All results cleared"),
			want: `{"status":"SUCCESS","message":"Operation completed successfully","data":"All results cleared"}`,
		},
		{
			name: "error has null data",
			env:  Failure("Unknown action: nope"),
			want: `{"status":"ERROR","message":"Unknown action: nope","data":null}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.env)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("want %s got %s", tc.want, b)
			}
		})
	}
}

func TestRequest_DecodeKeepsRawBody(t *testing.T) {
	raw := `{"headers":{"action":"analyze.maxProfit"},"body":{"values":[1,-2],"dataMode":"DAILY_CHANGES"}}`
	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Headers.Action != ActionMaxProfit {
		t.Fatalf("action=%q", req.Headers.Action)
	}
	var body AnalyzeBody
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(body.Values) != 2 || body.DataMode != "DAILY_CHANGES" {
		t.Fatalf("unexpected body %+v", body)
	}
}
