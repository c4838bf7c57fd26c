package images

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pinaly/inference"
	"pinaly/models"
)

func TestAnalyzeProducesRankedCandidates(t *testing.T) {
	svc, predictor, geocoder := newTestService(t)
	geocoder.name = "Paris, France"
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	candidates, err := svc.Analyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	for i, c := range candidates {
		if c.Rank != i+1 {
			t.Errorf("candidate %d has rank %d", i, c.Rank)
		}
		if i > 0 && c.Confidence > candidates[i-1].Confidence {
			t.Errorf("confidence not descending at rank %d", c.Rank)
		}
		if c.Geoname == nil || *c.Geoname != "Paris, France" {
			t.Errorf("candidate %d missing geoname", c.Rank)
		}
	}

	detail, err := svc.GetDetail(user, created.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.LocationStatus != models.StatusAICandidate {
		t.Errorf("status %s, want %s", detail.LocationStatus, models.StatusAICandidate)
	}
	if detail.GpsLat != nil {
		t.Error("candidates must not surface as a confirmed location")
	}
	if predictor.calls != 1 {
		t.Errorf("predictor called %d times", predictor.calls)
	}
}

func TestAnalyzeTwiceReplacesCandidateSet(t *testing.T) {
	svc, predictor, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	if _, err := svc.Analyze(context.Background(), user, created.ID); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	predictor.predictions = []inference.Prediction{
		{GpsLat: 51.5007, GpsLong: -0.1246, Confidence: 0.8},
	}
	candidates, err := svc.Analyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates after re-run, want 1", len(candidates))
	}
	var count int64
	svc.DB.Model(&models.LocationCandidate{}).Where("image_id = ?", created.ID).Count(&count)
	if count != 1 {
		t.Errorf("%d candidate rows in db, want 1", count)
	}
}

func TestConcurrentAnalyzeDoesNotInterleave(t *testing.T) {
	svc, predictor, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	// Two distinguishable prediction sets, one per concurrent call
	setA := []inference.Prediction{
		{GpsLat: 1, GpsLong: 1, Confidence: 0.9},
		{GpsLat: 2, GpsLong: 2, Confidence: 0.8},
		{GpsLat: 3, GpsLong: 3, Confidence: 0.7},
	}
	setB := []inference.Prediction{
		{GpsLat: 11, GpsLong: 11, Confidence: 0.6},
		{GpsLat: 12, GpsLong: 12, Confidence: 0.5},
		{GpsLat: 13, GpsLong: 13, Confidence: 0.4},
	}
	predictor.queue = [][]inference.Prediction{setA, setB}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Analyze(context.Background(), user, created.ID)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("analyze %d: %v", i, err)
		}
	}

	// The surviving set must be exactly one call's output, never a mix
	candidates, err := svc.ListCandidates(user, created.ID)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	fromB := candidates[0].GpsLat > 10
	for i, c := range candidates {
		if c.Rank != i+1 {
			t.Errorf("candidate %d has rank %d", i, c.Rank)
		}
		if (c.GpsLat > 10) != fromB {
			t.Fatalf("candidate sets interleaved: %+v", candidates)
		}
	}
}

func TestAnalyzeFailureKeepsState(t *testing.T) {
	svc, predictor, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	if _, err := svc.Analyze(context.Background(), user, created.ID); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	predictor.err = inference.ErrUnavailable
	_, err := svc.Analyze(context.Background(), user, created.ID)
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}

	// The earlier candidate set and status survive the failed call
	remaining, err := svc.ListCandidates(user, created.ID)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(remaining) != 3 {
		t.Errorf("%d candidates left, want 3", len(remaining))
	}
	detail, _ := svc.GetDetail(user, created.ID)
	if detail.LocationStatus != models.StatusAICandidate {
		t.Errorf("status %s after failed analyze", detail.LocationStatus)
	}
}

func TestAnalyzeKeepsConfirmedLocation(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	svc.Extract = withGPS(35.0, 135.0)
	created := uploadImage(t, svc, user)

	if _, err := svc.Analyze(context.Background(), user, created.ID); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	detail, err := svc.GetDetail(user, created.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.LocationStatus != models.StatusExifPresent {
		t.Errorf("status %s, want %s preserved", detail.LocationStatus, models.StatusExifPresent)
	}
	if detail.GpsLat == nil || *detail.GpsLat != 35.0 {
		t.Error("embedded location lost after analyze")
	}
}

func TestConfirmPromotesCandidate(t *testing.T) {
	svc, _, geocoder := newTestService(t)
	geocoder.name = "Paris, France"
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	candidates, err := svc.Analyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	detail, err := svc.Confirm(user, created.ID, candidates[0].ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if detail.LocationStatus != models.StatusConfirmed {
		t.Errorf("status %s, want %s", detail.LocationStatus, models.StatusConfirmed)
	}
	if detail.GpsLat == nil || *detail.GpsLat != candidates[0].GpsLat {
		t.Errorf("confirmed latitude %v, want %f", detail.GpsLat, candidates[0].GpsLat)
	}
	if detail.Geoname == nil || *detail.Geoname != "Paris, France" {
		t.Error("geoname not carried from the candidate")
	}

	var location models.Location
	if err = svc.DB.Where("image_id = ?", created.ID).First(&location).Error; err != nil {
		t.Fatalf("location row: %v", err)
	}
	if location.Source != models.LocationSourceInference {
		t.Errorf("source %s, want %s", location.Source, models.LocationSourceInference)
	}
	if location.Confidence == nil || *location.Confidence != candidates[0].Confidence {
		t.Error("confidence not carried from the candidate")
	}
	remaining, _ := svc.ListCandidates(user, created.ID)
	if len(remaining) != 0 {
		t.Errorf("%d candidates left after confirm, want 0", len(remaining))
	}
}

func TestConfirmWithoutCandidates(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	_, err := svc.Confirm(user, created.ID, 12345)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestConfirmRejectsForeignCandidate(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	first := uploadImage(t, svc, user)
	second := uploadImage(t, svc, user)

	candidates, err := svc.Analyze(context.Background(), user, first.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	_, err = svc.Confirm(user, second.ID, candidates[0].ID)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestReanalyzeFromConfirmed(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	candidates, err := svc.Analyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err = svc.Confirm(user, created.ID, candidates[0].ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	fresh, err := svc.Reanalyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("got %d candidates, want 3", len(fresh))
	}
	detail, _ := svc.GetDetail(user, created.ID)
	if detail.LocationStatus != models.StatusAICandidate {
		t.Errorf("status %s, want %s", detail.LocationStatus, models.StatusAICandidate)
	}
}

func TestReanalyzeFailureKeepsConfirmed(t *testing.T) {
	svc, predictor, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	candidates, err := svc.Analyze(context.Background(), user, created.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err = svc.Confirm(user, created.ID, candidates[0].ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	predictor.err = inference.ErrUnavailable
	if _, err = svc.Reanalyze(context.Background(), user, created.ID); !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
	detail, _ := svc.GetDetail(user, created.ID)
	if detail.LocationStatus != models.StatusConfirmed {
		t.Errorf("failed reanalyze moved status to %s", detail.LocationStatus)
	}
	if detail.GpsLat == nil {
		t.Error("failed reanalyze dropped the confirmed location")
	}
}

func TestSetManualLocation(t *testing.T) {
	svc, _, geocoder := newTestService(t)
	geocoder.name = "Lisbon, Portugal"
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)
	if _, err := svc.Analyze(context.Background(), user, created.ID); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	detail, err := svc.SetManualLocation(user, created.ID, 38.7223, -9.1393, nil)
	if err != nil {
		t.Fatalf("manual location: %v", err)
	}
	if detail.LocationStatus != models.StatusUserManual {
		t.Errorf("status %s, want %s", detail.LocationStatus, models.StatusUserManual)
	}
	if detail.Geoname == nil || *detail.Geoname != "Lisbon, Portugal" {
		t.Error("geoname not resolved for the manual pin")
	}
	var location models.Location
	if err = svc.DB.Where("image_id = ?", created.ID).First(&location).Error; err != nil {
		t.Fatalf("location row: %v", err)
	}
	if location.Source != models.LocationSourceManual {
		t.Errorf("source %s, want %s", location.Source, models.LocationSourceManual)
	}
	remaining, _ := svc.ListCandidates(user, created.ID)
	if len(remaining) != 0 {
		t.Errorf("%d candidates left after manual pin, want 0", len(remaining))
	}
}

func TestSetManualLocationValidatesRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := newTestUser(t, svc, "a@example.com")
	created := uploadImage(t, svc, user)

	var validation *ValidationError
	if _, err := svc.SetManualLocation(user, created.ID, 91.0, 0.0, nil); !errors.As(err, &validation) {
		t.Errorf("latitude 91: got %v, want ValidationError", err)
	}
	if _, err := svc.SetManualLocation(user, created.ID, 0.0, -181.0, nil); !errors.As(err, &validation) {
		t.Errorf("longitude -181: got %v, want ValidationError", err)
	}
}
