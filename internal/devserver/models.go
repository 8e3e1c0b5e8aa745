package devserver

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/carescope/internal/imaging"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/wizard"
)

// Recommendation texts returned by /api/assess.
const (
	RecommendTesting = "Based on your symptoms, we recommend consulting with a healthcare provider about thyroid testing."
	RecommendMonitor = "Your symptoms don't strongly indicate a need for thyroid testing, but monitor your condition and consult a healthcare provider if symptoms worsen."
)

// Score applies the screening rule: at least four answers above 0.6,
// neck swelling above 0.7, or at least two answers above 0.8. Confidence
// grows with the strongest answer in the direction of the verdict.
func Score(a wizard.Answers) wizard.Result {
	var over6, over8 int
	var peak float64
	for _, q := range wizard.Questions {
		v := a[q.ID]
		if v > 0.6 {
			over6++
		}
		if v > 0.8 {
			over8++
		}
		peak = math.Max(peak, v)
	}
	needs := over6 >= 4 || a["neck_swelling"] > 0.7 || over8 >= 2

	conf := 0.6 + 0.4*(1-peak)
	rec := RecommendMonitor
	if needs {
		conf = 0.6 + 0.4*peak
		rec = RecommendTesting
	}
	conf = math.Min(0.99, math.Round(conf*100)/100)
	return wizard.Result{NeedsTesting: needs, Confidence: conf, Recommendation: rec}
}

func (s *Server) assess(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	answers := wizard.NewAnswers()
	for _, q := range wizard.Questions {
		if v, ok := body[q.ID].(float64); ok {
			answers[q.ID] = v
		}
	}
	c.JSON(http.StatusOK, Score(answers))
}

// ThyroidClass buckets a TSH reading. An empty reading is "negative".
func ThyroidClass(tsh string) (string, error) {
	tsh = strings.TrimSpace(tsh)
	if tsh == "" {
		return "negative", nil
	}
	v, err := strconv.ParseFloat(tsh, 64)
	if err != nil {
		return "", fmt.Errorf("could not convert TSH value %q to float", tsh)
	}
	switch {
	case v > 4.5:
		return "hypothyroid", nil
	case v < 0.4:
		return "hyperthyroid", nil
	default:
		return "negative", nil
	}
}

func (s *Server) predictThyroid(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false})
		return
	}
	tsh, _ := body["TSH"].(string)
	class, err := ThyroidClass(tsh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false})
		return
	}

	ctx := c.Request.Context()
	explanation := s.explainer.ThyroidCondition(ctx, class)
	diet, _ := s.explainer.Diet(ctx, class)
	c.JSON(http.StatusOK, gin.H{
		"prediction":          class,
		"explanation":         "<p>" + explanation.Summary + "</p>",
		"dietRecommendations": diet,
		"success":             true,
	})
}

// LungRequiredFields lists the keys /predict_form insists on, in the order
// they are checked.
func LungRequiredFields() []string {
	fields := []string{"GENDER", "AGE"}
	for _, f := range predict.LungFactors {
		fields = append(fields, f.Key)
	}
	return fields
}

// LungProbability rises with each factor answered 2 (yes) and with age.
func LungProbability(age float64, yes int) float64 {
	p := 0.1 + 0.06*float64(yes)
	if age >= 60 {
		p += 0.1
	}
	p = math.Max(0.01, math.Min(0.99, p))
	return math.Round(p*100) / 100
}

func (s *Server) predictLung(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, f := range LungRequiredFields() {
		if _, ok := body[f]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: " + f})
			return
		}
	}

	age, _ := body["AGE"].(float64)
	yes := 0
	for _, f := range predict.LungFactors {
		if v, _ := body[f.Key].(float64); v == 2 {
			yes++
		}
	}
	p := LungProbability(age, yes)
	prediction := "NO"
	if p > 0.5 {
		prediction = "YES"
	}
	c.JSON(http.StatusOK, gin.H{
		"prediction":  prediction,
		"probability": p,
		"message":     fmt.Sprintf("Lung cancer prediction: %s (probability: %.2f)", prediction, p),
	})
}

var scanLabels = []string{"pituitary", "glioma", "notumor", "meningioma"}

type upload struct {
	contentType string
	data        []byte
}

// ScanVerdict picks a class and confidence from the image bytes, so the same
// image always gets the same answer.
func ScanVerdict(data []byte) (result, confidence string) {
	sum := sha256.Sum256(data)
	label := scanLabels[int(sum[0])%len(scanLabels)]
	if label == "notumor" {
		result = "No Tumor"
	} else {
		result = "Tumor: " + strings.ToUpper(label[:1]) + label[1:]
	}
	pct := 90 + float64(binary.BigEndian.Uint16(sum[1:3])%1000)/100
	return result, fmt.Sprintf("%.2f%%", pct)
}

func (s *Server) classifyScan(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if imaging.Detect(fh.Filename, data) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload an image file"})
		return
	}

	name := path.Base(fh.Filename)
	s.mu.Lock()
	s.uploads[name] = upload{contentType: fh.Header.Get("Content-Type"), data: data}
	s.mu.Unlock()

	result, confidence := ScanVerdict(data)
	explanation := s.explainer.BrainScan(c.Request.Context(), predict.BrainResult{Result: result})
	c.JSON(http.StatusOK, gin.H{
		"result":      result,
		"confidence":  confidence,
		"file_path":   "/uploads/" + name,
		"explanation": explanation.Summary,
	})
}

func (s *Server) serveUpload(c *gin.Context) {
	s.mu.RLock()
	u, ok := s.uploads[c.Param("name")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ct := u.contentType
	if ct == "" {
		ct = http.DetectContentType(u.data)
	}
	c.Data(http.StatusOK, ct, u.data)
}
