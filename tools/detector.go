package tools

import "math/rand"

// Expression is the smile-capture analysis result.
type Expression struct {
	Smile      string `json:"smile"`
	Confidence int    `json:"confidence"`
}

// ExpressionDetector analyzes a captured image. A real facial-expression
// backend can be plugged in; the product ships with the mock.
type ExpressionDetector interface {
	Detect(imagePath string) (Expression, error)
}

// MockDetector returns random results, keeping the smile-cam gimmick working
// without a recognition service.
type MockDetector struct{}

func (MockDetector) Detect(string) (Expression, error) {
	smile := "not detected"
	if rand.Intn(2) == 0 {
		smile = "detected"
	}
	return Expression{Smile: smile, Confidence: rand.Intn(100)}, nil
}
