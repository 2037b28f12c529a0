// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package validation

import (
	"strings"
	"testing"

	"github.com/tunegraph/tunegraph/internal/models"
)

func TestRecommendRequest(t *testing.T) {
	tests := []struct {
		name      string
		input     models.RecommendRequest
		wantField string
		wantTag   string
	}{
		{"defaults", models.RecommendRequest{TrackID: "t1"}, "", ""},
		{"k in range", models.RecommendRequest{TrackID: "t1", K: 25}, "", ""},
		{"text embedding", models.RecommendRequest{TrackID: "t1", EmbeddingType: "text"}, "", ""},
		{"feature embedding", models.RecommendRequest{TrackID: "t1", EmbeddingType: "feature"}, "", ""},
		{"k too high", models.RecommendRequest{TrackID: "t1", K: 51}, "K", "max"},
		{"k negative", models.RecommendRequest{TrackID: "t1", K: -1}, "K", "min"},
		{"unknown embedding", models.RecommendRequest{TrackID: "t1", EmbeddingType: "audio"}, "EmbeddingType", "oneof"},
		{"case sensitive embedding", models.RecommendRequest{TrackID: "t1", EmbeddingType: "Text"}, "EmbeddingType", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Errorf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("ValidateStruct() = nil, want failure on %s", tt.wantField)
			}
			assertFieldError(t, verr, tt.wantField, tt.wantTag)
		})
	}
}

func TestSemanticSearchRequest(t *testing.T) {
	if verr := ValidateStruct(&models.SemanticSearchRequest{Query: "upbeat indie rock"}); verr != nil {
		t.Errorf("ValidateStruct() = %v, want nil", verr)
	}

	missing := ValidateStruct(&models.SemanticSearchRequest{})
	if missing == nil {
		t.Fatal("ValidateStruct() accepted an empty query")
	}
	assertFieldError(t, missing, "Query", "required")

	outOfRange := 1.5
	badSim := ValidateStruct(&models.SemanticSearchRequest{Query: "rock", MinSimilarity: &outOfRange})
	if badSim == nil {
		t.Fatal("ValidateStruct() accepted min_similarity above 1")
	}
	assertFieldError(t, badSim, "MinSimilarity", "max")

	zero := 0.0
	if verr := ValidateStruct(&models.SemanticSearchRequest{Query: "rock", MinSimilarity: &zero}); verr != nil {
		t.Errorf("ValidateStruct() rejected an explicit zero threshold: %v", verr)
	}
}

func TestLoginRequest(t *testing.T) {
	if verr := ValidateStruct(&models.LoginRequest{Username: "admin", Password: "s3cret"}); verr != nil {
		t.Errorf("ValidateStruct() = %v, want nil", verr)
	}

	verr := ValidateStruct(&models.LoginRequest{})
	if verr == nil {
		t.Fatal("ValidateStruct() accepted empty credentials")
	}
	if len(verr.Fields) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Fields), verr)
	}
	assertFieldError(t, verr, "Username", "required")
	assertFieldError(t, verr, "Password", "required")
}

func TestToAPIError_SingleField(t *testing.T) {
	verr := ValidateStruct(&models.RecommendRequest{TrackID: "t1", K: 99})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want failure")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "K") {
		t.Errorf("Message = %q, want the field name", apiErr.Message)
	}
	if apiErr.Details["field"] != "K" || apiErr.Details["tag"] != "max" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleFields(t *testing.T) {
	verr := ValidateStruct(&models.LoginRequest{})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want failure")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] = %T, want a field list", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d listed fields, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, "Username") || !strings.Contains(apiErr.Message, "Password") {
		t.Errorf("Message = %q, want both field names", apiErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"required", &models.SemanticSearchRequest{}, "Query is required"},
		{"numeric max", &models.RecommendRequest{TrackID: "t1", K: 99}, "K must be at most 50"},
		{"oneof", &models.RecommendRequest{TrackID: "t1", EmbeddingType: "audio"}, "EmbeddingType must be one of: text feature combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want failure")
			}
			if got := verr.Fields[0].Message; got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func assertFieldError(t *testing.T, verr *RequestValidationError, field, tag string) {
	t.Helper()
	for _, fe := range verr.Fields {
		if fe.Field == field && fe.Tag == tag {
			return
		}
	}
	t.Errorf("no failure on field %s with tag %s: %v", field, tag, verr)
}
