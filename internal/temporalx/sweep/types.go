package sweep

const (
	WorkflowName               = "PrioritySweep"
	ActivityListOutstanding    = "ListOutstandingSupplies"
	ActivityRecalculateSupply  = "RecalculateSupply"
	DefaultWorkflowConcurrency = 1
	maxWorkflowConcurrency     = 16
)

type Input struct {
	// Concurrency bounds how many supplies are recalculated at once.
	Concurrency int `json:"concurrency"`
}

type SupplyResult struct {
	SupplyCode      string `json:"supply_code"`
	Outcome         string `json:"outcome"`
	ItemsUpdated    int    `json:"items_updated"`
	RequestsUpdated int    `json:"requests_updated"`
	Error           string `json:"error,omitempty"`
}

type Result struct {
	Supplies  int            `json:"supplies"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []SupplyResult `json:"results"`
}
