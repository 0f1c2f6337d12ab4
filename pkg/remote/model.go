package remote

// Record is the wire shape of a task as the list service stores it.
// Timestamps are epoch seconds.
type Record struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Importance    string `json:"importance"`
	Deadline      *int64 `json:"deadline,omitempty"`
	Done          bool   `json:"done"`
	Color         string `json:"color,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	ChangedAt     int64  `json:"changed_at"`
	LastUpdatedBy string `json:"last_updated_by"`
}

type listResponse struct {
	Status   string   `json:"status"`
	Revision int64    `json:"revision"`
	List     []Record `json:"list"`
}

type elementRequest struct {
	Element Record `json:"element"`
}

type elementResponse struct {
	Status   string `json:"status"`
	Revision int64  `json:"revision"`
}
