package functions

import "context"

// Function names deployed on the platform.
const (
	fnOCRExtract       = "ocr-extract"
	fnAnalyzeDocument  = "analyze-document"
	fnPlaidExchange    = "plaid-exchange-token"
	fnRegulationSearch = "regulation-search"
)

// OCRRequest asks the hosted OCR function to extract text from a stored file.
type OCRRequest struct {
	DocumentID  string `json:"document_id"`
	StoragePath string `json:"storage_path"`
	FileURL     string `json:"file_url"`
}

// OCRResult is the extracted text with a confidence score.
type OCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ExtractText invokes the OCR function.
func (c *Client) ExtractText(ctx context.Context, req *OCRRequest) (*OCRResult, error) {
	var result OCRResult
	if err := c.Invoke(ctx, fnOCRExtract, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalysisRequest asks the hosted LLM analysis function to classify a
// document and pull out its key/value fields.
type AnalysisRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// AnalysisResult carries the extracted source fields. Field names are raw
// source spellings; the form field mapper canonicalizes them later.
type AnalysisResult struct {
	FormType    string            `json:"form_type,omitempty"`
	Fields      map[string]string `json:"fields"`
	NeedsReview bool              `json:"needs_review"`
}

// AnalyzeDocument invokes the analysis function.
func (c *Client) AnalyzeDocument(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.Invoke(ctx, fnAnalyzeDocument, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PlaidExchangeResult is the access token minted from a public token.
type PlaidExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangePlaidToken invokes the bank-link token exchange function.
func (c *Client) ExchangePlaidToken(ctx context.Context, publicToken string) (*PlaidExchangeResult, error) {
	var result PlaidExchangeResult
	req := map[string]string{"public_token": publicToken}
	if err := c.Invoke(ctx, fnPlaidExchange, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RegulationHit is one regulation search result.
type RegulationHit struct {
	Title    string `json:"title"`
	Citation string `json:"citation"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
}

// RegulationSearchResult is the result list for a regulation query.
type RegulationSearchResult struct {
	Hits []RegulationHit `json:"hits"`
}

// SearchRegulations invokes the regulation search proxy.
func (c *Client) SearchRegulations(ctx context.Context, query string, limit int) (*RegulationSearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	var result RegulationSearchResult
	req := map[string]any{"query": query, "limit": limit}
	if err := c.Invoke(ctx, fnRegulationSearch, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
