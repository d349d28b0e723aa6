package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardioshield/predictor/internal/classifier"
	"github.com/cardioshield/predictor/internal/crypto"
	"github.com/cardioshield/predictor/internal/database"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/metrics"
	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/repositories"
	"gorm.io/gorm"
)

// spyModel records every vector it is given and returns a fixed class
type spyModel struct {
	mu    sync.Mutex
	class int
	err   error
	seen  [][]float64
}

func (m *spyModel) Predict(x []float64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, append([]float64(nil), x...))
	return m.class, m.err
}

func (m *spyModel) NumFeatures() int { return models.FeatureCount }
func (m *spyModel) Kind() string     { return "spy" }

// fakeProvider serves models by name; a nil entry is unavailable
type fakeProvider map[string]classifier.Model

func (p fakeProvider) Get(name string) (classifier.Model, error) {
	m, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", classifier.ErrUnknownModel, name)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", classifier.ErrModelUnavailable, name)
	}
	return m, nil
}

type fakeHistory struct {
	err     error
	records []models.Prediction
}

func (h *fakeHistory) Record(_ context.Context, _ models.PatientInput, p models.Prediction) error {
	h.records = append(h.records, p)
	return h.err
}

func sampleInput() models.PatientInput {
	return models.PatientInput{
		Age:               63,
		Sex:               1,
		ChestPain:         0,
		RestingBP:         145,
		Cholesterol:       233,
		FastingBloodSugar: true,
		RestECG:           2,
		MaxHeartRate:      150,
		ExerciseAngina:    false,
		Oldpeak:           2.3,
		Slope:             0,
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(database.TestConfig(), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestPredict_PassesVectorUnchangedAndInOrder(t *testing.T) {
	spy := &spyModel{class: 1}
	svc, err := NewPredictionService(fakeProvider{"Random Forest": spy}, nil)
	require.NoError(t, err)

	prediction, err := svc.Predict(context.Background(), "Random Forest", sampleInput())
	require.NoError(t, err)

	require.Len(t, spy.seen, 1)
	assert.Equal(t, []float64{63, 1, 0, 145, 233, 1, 2, 150, 0, 2.3, 0}, spy.seen[0])
	assert.Equal(t, models.NewPrediction("Random Forest", 1), prediction)
	assert.Equal(t, models.MessageHeartDisease, prediction.Message)
}

func TestPredict_ClassMapping(t *testing.T) {
	tests := []struct {
		class   int
		message string
	}{
		{1, models.MessageHeartDisease},
		{0, models.MessageNoHeartDisease},
		{2, models.MessageNoHeartDisease},
		{-1, models.MessageNoHeartDisease},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("class %d", tt.class), func(t *testing.T) {
			svc, err := NewPredictionService(fakeProvider{"SVM": &spyModel{class: tt.class}}, nil)
			require.NoError(t, err)

			p, err := svc.Predict(context.Background(), "SVM", sampleInput())
			require.NoError(t, err)
			assert.Equal(t, tt.message, p.Message)
			assert.Equal(t, tt.class, p.Class)
		})
	}
}

func TestPredict_UnavailableModelLeavesOtherUsable(t *testing.T) {
	telemetry := metrics.NewProvider()
	svc, err := NewPredictionService(fakeProvider{
		"Random Forest": nil,
		"SVM":           &spyModel{class: 0},
	}, nil, WithMetrics(telemetry))
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), "Random Forest", sampleInput())
	assert.ErrorIs(t, err, classifier.ErrModelUnavailable)

	p, err := svc.Predict(context.Background(), "SVM", sampleInput())
	require.NoError(t, err)
	assert.Equal(t, models.MessageNoHeartDisease, p.Message)

	assert.InDelta(t, 1, testutil.ToFloat64(telemetry.Metrics.PredictionErrors.WithLabelValues("Random Forest", metrics.ReasonUnavailable)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(telemetry.Metrics.PredictionsTotal.WithLabelValues("SVM", metrics.OutcomeNoHeartDisease)), 0)
}

func TestPredict_UnknownModel(t *testing.T) {
	svc, err := NewPredictionService(fakeProvider{}, nil)
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), "Logistic Regression", sampleInput())
	assert.ErrorIs(t, err, classifier.ErrUnknownModel)
}

func TestPredict_ValidationRejectsBeforeModel(t *testing.T) {
	spy := &spyModel{class: 1}
	svc, err := NewPredictionService(fakeProvider{"SVM": spy}, nil)
	require.NoError(t, err)

	input := sampleInput()
	input.Age = 0
	input.ChestPain = 7
	input.Oldpeak = 6.5

	_, err = svc.Predict(context.Background(), "SVM", input)
	require.ErrorIs(t, err, ErrInvalidInput)

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	fields := inputErr.Fields()
	assert.Contains(t, fields, "age")
	assert.Contains(t, fields, "cp")
	assert.Contains(t, fields, "oldpeak")
	assert.Empty(t, spy.seen)
}

func TestPredict_ModelError(t *testing.T) {
	svc, err := NewPredictionService(fakeProvider{"SVM": &spyModel{err: classifier.ErrFeatureCount}}, nil)
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), "SVM", sampleInput())
	assert.ErrorIs(t, err, classifier.ErrFeatureCount)
}

func TestPredict_HistoryFailureDoesNotFailPrediction(t *testing.T) {
	history := &fakeHistory{err: errors.New("disk full")}
	svc, err := NewPredictionService(fakeProvider{"SVM": &spyModel{class: 1}}, nil, WithHistory(history))
	require.NoError(t, err)

	p, err := svc.Predict(context.Background(), "SVM", sampleInput())
	require.NoError(t, err)
	assert.True(t, p.HasHeartDisease)
	assert.Len(t, history.records, 1)
}

func TestNewPredictionService_RequiresProvider(t *testing.T) {
	_, err := NewPredictionService(nil, nil)
	assert.Error(t, err)
}

func newHistoryService(t *testing.T, telemetry *metrics.Provider) (*HistoryService, *repositories.PredictionRepository) {
	t.Helper()
	key, err := crypto.GenerateEncryptionKey()
	require.NoError(t, err)

	repo := repositories.NewPredictionRepository(setupDB(t))
	svc, err := NewHistoryService(repo, key, telemetry, nil)
	require.NoError(t, err)
	return svc, repo
}

func TestHistory_RoundTripThroughEncryption(t *testing.T) {
	telemetry := metrics.NewProvider()
	svc, repo := newHistoryService(t, telemetry)
	ctx := context.Background()

	input := sampleInput()
	require.NoError(t, svc.Record(ctx, input, models.NewPrediction("SVM", 1)))

	records, _, err := repo.List(repositories.PredictionFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].EncryptedInput, "233")

	page, err := svc.List(ctx, repositories.PredictionFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 10, page.Limit)

	entry := page.Entries[0]
	require.NotNil(t, entry.Input)
	assert.Equal(t, input, *entry.Input)
	assert.Equal(t, "SVM", entry.Model)
	assert.Equal(t, models.MessageHeartDisease, entry.Message)
	assert.True(t, strings.HasSuffix(entry.CreatedAt, "Z"))

	assert.InDelta(t, 1, testutil.ToFloat64(telemetry.Metrics.HistoryWrites.WithLabelValues("ok")), 0)

	got, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Input)
	assert.Equal(t, input, *got.Input)

	_, err = svc.Get(ctx, "6f1d3b8a-6b7e-4f0c-8d2a-1e9c5a4b3d2f")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestHistory_UndecryptableRecord(t *testing.T) {
	svc, repo := newHistoryService(t, nil)

	require.NoError(t, repo.Create(&models.PredictionRecord{
		ID:             "0b8f7c1e-2f4a-4c55-9a0e-3c2d1b0a9f8e",
		ModelName:      "Random Forest",
		EncryptedInput: "bm90IHJlYWxseSBjaXBoZXJ0ZXh0IGF0IGFsbA==",
	}))

	page, err := svc.List(context.Background(), repositories.PredictionFilter{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Nil(t, page.Entries[0].Input)
	assert.NotEmpty(t, page.Entries[0].DecryptError)
}

func TestHistory_StatsAndRetention(t *testing.T) {
	svc, repo := newHistoryService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, sampleInput(), models.NewPrediction("SVM", 1)))
	require.NoError(t, svc.Record(ctx, sampleInput(), models.NewPrediction("SVM", 0)))
	require.NoError(t, repo.Create(&models.PredictionRecord{
		ID:             "6f1d3b8a-6b7e-4f0c-8d2a-1e9c5a4b3d2f",
		ModelName:      "Random Forest",
		EncryptedInput: "x",
		CreatedAt:      time.Now().UTC().Add(-200 * 24 * time.Hour),
	}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	require.Len(t, stats.Models, 2)

	deleted, err := svc.DeleteOlderThan(time.Now().UTC().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestNewHistoryService_RequiresKey(t *testing.T) {
	repo := repositories.NewPredictionRepository(setupDB(t))

	_, err := NewHistoryService(repo, "", nil, nil)
	assert.ErrorIs(t, err, crypto.ErrEncryptionKeyNotSet)
}

// fakeMailer captures sent tokens
type fakeMailer struct {
	err    error
	sentTo []string
	tokens []string
}

func (m *fakeMailer) SendAdminToken(_ context.Context, to, token string, _ time.Time) error {
	m.sentTo = append(m.sentTo, to)
	m.tokens = append(m.tokens, token)
	return m.err
}

func newAdminAuth(t *testing.T, mailer TokenMailer) (*AdminAuthService, *repositories.AdminTokenRepository) {
	t.Helper()
	secret, err := crypto.GenerateJWTSecret()
	require.NoError(t, err)

	repo := repositories.NewAdminTokenRepository(setupDB(t))
	svc, err := NewAdminAuthService(repo, mailer, &AdminAuthConfig{
		JWTSecret:  secret,
		AdminEmail: "admin@example.com",
	}, metrics.NewProvider(), nil)
	require.NoError(t, err)
	return svc, repo
}

func TestAdminAuth_RequestAndValidate(t *testing.T) {
	mailer := &fakeMailer{}
	svc, repo := newAdminAuth(t, mailer)

	resp, err := svc.RequestToken(context.Background(), &TokenRequest{Email: "admin@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ExpiresAt)
	require.Len(t, mailer.tokens, 1)

	claims, err := svc.ValidateToken(mailer.tokens[0])
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)

	stored, err := repo.FindByTokenHash(crypto.HashToken(mailer.tokens[0]))
	require.NoError(t, err)
	assert.NotNil(t, stored.LastUsedAt)
}

func TestAdminAuth_UnauthorizedEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newAdminAuth(t, mailer)

	_, err := svc.RequestToken(context.Background(), &TokenRequest{Email: "someone@example.com"})
	assert.ErrorIs(t, err, ErrUnauthorizedEmail)
	assert.Empty(t, mailer.sentTo)
}

func TestAdminAuth_RateLimited(t *testing.T) {
	svc, _ := newAdminAuth(t, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.RequestToken(ctx, &TokenRequest{Email: "admin@example.com"})
	require.NoError(t, err)

	_, err = svc.RequestToken(ctx, &TokenRequest{Email: "admin@example.com"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAdminAuth_RejectsUnknownToken(t *testing.T) {
	svc, _ := newAdminAuth(t, &fakeMailer{})

	// Correctly signed but never issued through RequestToken
	token, _, err := crypto.GenerateAdminJWT("admin@example.com", svc.jwtSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestAdminAuth_MailFailure(t *testing.T) {
	svc, _ := newAdminAuth(t, &fakeMailer{err: errors.New("ses down")})

	_, err := svc.RequestToken(context.Background(), &TokenRequest{Email: "admin@example.com"})
	assert.Error(t, err)
}

// fakeSES captures SendEmail input
type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailService_SendAdminToken(t *testing.T) {
	client := &fakeSES{}
	svc, err := NewEmailServiceWithClient(client, &EmailConfig{FromEmail: "noreply@example.com"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SendAdminToken(context.Background(), "admin@example.com", "tok", time.Now().Add(time.Hour)))

	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"admin@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, AdminTokenSubject, aws.ToString(client.input.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(client.input.Content.Simple.Body.Text.Data), "Bearer tok")
	assert.Contains(t, aws.ToString(client.input.Content.Simple.Body.Html.Data), "Bearer tok")
}

func TestEmailService_Errors(t *testing.T) {
	_, err := NewEmailServiceWithClient(&fakeSES{}, &EmailConfig{}, nil, nil)
	assert.Error(t, err, "from email is required")

	svc, err := NewEmailServiceWithClient(&fakeSES{err: errors.New("throttled")}, &EmailConfig{FromEmail: "a@b.c"}, nil, nil)
	require.NoError(t, err)

	assert.Error(t, svc.SendAdminToken(context.Background(), "", "tok", time.Now()))
	assert.Error(t, svc.SendAdminToken(context.Background(), "x@y.z", "", time.Now()))
	assert.Error(t, svc.SendAdminToken(context.Background(), "x@y.z", "tok", time.Now()))
}

type countingCleaner struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCleaner) CleanupExpired() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 2, nil
}

func (c *countingCleaner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingPruner struct {
	cutoff time.Time
}

func (p *recordingPruner) DeleteOlderThan(cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 5, nil
}

func TestCleanup_RunNow(t *testing.T) {
	pruner := &recordingPruner{}
	svc := NewCleanupService(&countingCleaner{}, pruner, CleanupConfig{Retention: 90 * 24 * time.Hour}, nil)

	result := svc.RunCleanupNow()
	assert.EqualValues(t, 2, result.AdminTokens)
	assert.EqualValues(t, 5, result.Predictions)
	assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), pruner.cutoff, time.Minute)
}

func TestCleanup_NilTargetsAndZeroRetention(t *testing.T) {
	pruner := &recordingPruner{}
	svc := NewCleanupService(nil, pruner, CleanupConfig{}, nil)

	result := svc.RunCleanupNow()
	assert.Zero(t, result.AdminTokens)
	assert.Zero(t, result.Predictions)
	assert.True(t, pruner.cutoff.IsZero())
}

func TestCleanup_StartStop(t *testing.T) {
	cleaner := &countingCleaner{}
	svc := NewCleanupService(cleaner, nil, CleanupConfig{Interval: 10 * time.Millisecond}, nil)

	svc.Start()
	svc.Start() // second start is a no-op
	assert.Eventually(t, func() bool { return cleaner.count() >= 3 }, time.Second, 5*time.Millisecond)

	svc.Stop()
	after := cleaner.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, cleaner.count())

	svc.Stop() // stopping twice is safe
}
