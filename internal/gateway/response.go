package gateway

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// corsHeaders go on every response, success or error. The original error
// paths were inconsistent about this; normalizing them is deliberate.
func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
	}
}

// sentimentResponse is the comprehend action's body, mirroring the service's
// field naming.
type sentimentResponse struct {
	Sentiment      string             `json:"Sentiment"`
	SentimentScore map[string]float64 `json:"SentimentScore"`
}

// sentimentAnalysis is the sentiment block inside the combined response.
type sentimentAnalysis struct {
	Sentiment string             `json:"sentiment"`
	Score     map[string]float64 `json:"sentiment_score"`
}

// combinedResponse is the textract-comprehend action's body.
type combinedResponse struct {
	ExtractedText     []string          `json:"extracted_text"`
	SentimentAnalysis sentimentAnalysis `json:"sentiment_analysis"`
}

type errorBody struct {
	Error string `json:"error"`
}

// jsonResponse builds a response envelope with the payload JSON-encoded into
// the body string.
func jsonResponse(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		// Only reachable with an unmarshalable payload type, which would be
		// a programming error in a handler.
		return errorResponse(500, "Failed to encode response: "+err.Error())
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(body),
	}
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorBody{Error: message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(body),
	}
}
