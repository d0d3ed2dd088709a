package clients

import "context"

// --- Dashboard (/timeline) ---
type PublishResp struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// PublishTimeline posts an analysis result to the dashboard service.
func (h *HTTP) PublishTimeline(ctx context.Context, url string, result any) (*PublishResp, error) {
	var out PublishResp
	if err := h.postJSON(ctx, "dashboard", url+"/timeline", result, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
