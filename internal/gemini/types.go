package gemini

// Wire types for the generateContent REST call. Response fields are pointers so
// a missing field can be told apart from an empty one.

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []responseCandidate `json:"candidates"`
}

type responseCandidate struct {
	Content *responseContent `json:"content"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text *string `json:"text"`
}

// errorEnvelope is the body Google APIs return with a non-2xx status.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
