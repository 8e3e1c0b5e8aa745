package devserver

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/config"
	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/imaging"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/wizard"
)

func startServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts.Quiet = true
	s := New(opts)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv.URL
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		set   map[string]float64
		needs bool
	}{
		{"all zero", nil, false},
		{"neck swelling alone", map[string]float64{"neck_swelling": 0.75}, true},
		{"neck swelling at threshold", map[string]float64{"neck_swelling": 0.7}, false},
		{"two severe", map[string]float64{"fatigue": 0.9, "dry_skin": 0.85}, true},
		{"four above 0.6", map[string]float64{"fatigue": 0.65, "dry_skin": 0.65, "hair_loss": 0.65, "mood_changes": 0.65}, true},
		{"three above 0.6", map[string]float64{"fatigue": 0.65, "dry_skin": 0.65, "hair_loss": 0.65}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := wizard.NewAnswers()
			for k, v := range tt.set {
				a[k] = v
			}
			got := Score(a)
			assert.Equal(t, tt.needs, got.NeedsTesting)
			assert.GreaterOrEqual(t, got.Confidence, 0.6)
			assert.LessOrEqual(t, got.Confidence, 0.99)
			if tt.needs {
				assert.Equal(t, RecommendTesting, got.Recommendation)
			} else {
				assert.Equal(t, RecommendMonitor, got.Recommendation)
			}
		})
	}
}

func TestAccounts_EndToEnd(t *testing.T) {
	_, base := startServer(t, Options{Secret: "s3cret"})
	ctx := context.Background()
	c := auth.NewClient(base, 5*time.Second)

	token, u, err := c.Register(ctx, "Ada", "Ada@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	exp, ok := auth.TokenExpiry(token)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	_, _, err = c.Register(ctx, "Ada", "ada@example.com", "hunter22")
	var apiErr *auth.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User already exists", apiErr.Message)

	_, _, err = c.Login(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	token, _, err = c.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	me, err := c.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "Ada", me.Name)
}

func TestCurrentUser_RejectsBadTokens(t *testing.T) {
	_, base := startServer(t, Options{})
	ctx := context.Background()
	c := auth.NewClient(base, 5*time.Second)

	token, _, err := c.Register(ctx, "Bo", "bo@example.com", "secret1")
	require.NoError(t, err)

	_, err = c.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = c.CurrentUser(ctx, token+"x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	other := New(Options{Secret: "different"})
	forged, err := other.sign(auth.User{ID: "someone"})
	require.NoError(t, err)
	_, err = c.CurrentUser(ctx, forged)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

}

func TestCurrentUser_RejectsExpiredToken(t *testing.T) {
	_, base := startServer(t, Options{TokenTTL: time.Millisecond})
	ctx := context.Background()
	c := auth.NewClient(base, 5*time.Second)

	token, _, err := c.Register(ctx, "Cy", "cy@example.com", "secret1")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	assert.True(t, auth.Expired(token, time.Now()))
	_, err = c.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRegister_Validation(t *testing.T) {
	_, base := startServer(t, Options{})
	c := auth.NewClient(base, 5*time.Second)

	_, _, err := c.Register(context.Background(), "", "x@example.com", "secret1")
	var apiErr *auth.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	_, _, err = c.Register(context.Background(), "X", "not-an-email", "secret1")
	require.ErrorAs(t, err, &apiErr)

	_, _, err = c.Register(context.Background(), "X", "x@example.com", "123")
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "6 or more")
}

func TestAssess_ThroughClient(t *testing.T) {
	_, base := startServer(t, Options{})
	pc := predict.New(config.SingleHost(base), 5*time.Second)

	a := wizard.NewAnswers()
	a["neck_swelling"] = 0.9
	res, err := pc.Assess(context.Background(), "", wizard.Submission{
		Answers:      a,
		PersonalInfo: wizard.PersonalInfo{Age: "40", Gender: wizard.GenderMale, FamilyHistory: wizard.FamilyHistoryNo},
	})
	require.NoError(t, err)
	assert.True(t, res.NeedsTesting)
	assert.Equal(t, 0.96, res.Confidence)
	assert.Equal(t, RecommendTesting, res.Recommendation)
}

func TestPredictThyroid_ThroughClient(t *testing.T) {
	_, base := startServer(t, Options{Explainer: explain.New(nil, 0)})
	pc := predict.New(config.SingleHost(base), 5*time.Second)

	req := predict.NewThyroidLabRequest()
	req["age"] = "50"
	req["TSH"] = "7.2"
	res, err := pc.PredictThyroid(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hypothyroid", res.Prediction)
	assert.Equal(t, "<p>"+explain.FallbackCondition+"</p>", res.Explanation)
	assert.Equal(t, explain.FallbackDiet, res.Diet)
}

func TestThyroidClass(t *testing.T) {
	for tsh, want := range map[string]string{"": "negative", "2.1": "negative", "0.1": "hyperthyroid", "9": "hypothyroid"} {
		got, err := ThyroidClass(tsh)
		require.NoError(t, err)
		assert.Equal(t, want, got, "TSH %q", tsh)
	}
	_, err := ThyroidClass("abc")
	assert.Error(t, err)
}

func TestPredictLung_ThroughClient(t *testing.T) {
	_, base := startServer(t, Options{})
	pc := predict.New(config.SingleHost(base), 5*time.Second)

	req := predict.NewLungRequest()
	req.Age = 65
	for _, f := range predict.LungFactors[:8] {
		req.Factors[f.Key] = true
	}
	res, err := pc.PredictLung(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "YES", res.Prediction)
	assert.Equal(t, 0.68, res.Probability)
	assert.Equal(t, "Lung cancer prediction: YES (probability: 0.68)", res.Message)
}

func TestPredictLung_MissingField(t *testing.T) {
	_, base := startServer(t, Options{})
	resp, err := http.Post(base+"/predict_form", "application/json", strings.NewReader(`{"GENDER":"M","AGE":40}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	pc := predict.New(config.SingleHost(base), 5*time.Second)
	_, err = pc.PredictLung(context.Background(), predict.NewLungRequest())
	require.NoError(t, err, "a complete request passes")
}

func scanPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(3, 3, color.Gray{Y: 200})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClassifyScan_ThroughClient(t *testing.T) {
	_, base := startServer(t, Options{})
	pc := predict.New(config.SingleHost(base), 5*time.Second)

	up, err := imaging.PrepareBytes("scan.png", scanPNG(t))
	require.NoError(t, err)

	first, err := pc.ClassifyBrainScan(context.Background(), *up)
	require.NoError(t, err)
	second, err := pc.ClassifyBrainScan(context.Background(), *up)
	require.NoError(t, err)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, "/uploads/scan.png", first.FilePath)
	assert.Equal(t, explain.FallbackScan, first.Explanation)

	resp, err := http.Get(base + first.FilePath)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScanVerdict(t *testing.T) {
	result, confidence := ScanVerdict([]byte("abc"))
	assert.Regexp(t, `^(No Tumor|Tumor: (Pituitary|Glioma|Meningioma))$`, result)
	assert.Regexp(t, `^9\d\.\d\d%$`, confidence)
}

func TestClassifyScan_Rejects(t *testing.T) {
	_, base := startServer(t, Options{})

	resp, err := http.Post(base+"/", "multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(base + "/uploads/missing.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthRoutes(t *testing.T) {
	_, base := startServer(t, Options{})
	pc := predict.New(config.SingleHost(base), 5*time.Second)
	for _, svc := range predict.Services {
		assert.NoError(t, pc.Health(context.Background(), svc), svc)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "127.0.0.1:0", New(Options{Quiet: true})) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
