package types

// Data types selectable on the hub form. Standard reads the state's
// primary table, comprehensive joins the secondary one for extended
// fields.
const (
	DataTypeStandard      = "standard"
	DataTypeComprehensive = "comprehensive"
)

// AllPartiesSentinel is the selector value meaning "no secured-party
// filter". It is an API-level sentinel and never reaches SQL.
const AllPartiesSentinel = "all"

type ExportRequest struct {
	States          []string `json:"states"`
	DataType        string   `json:"dataType"`
	SelectedParties []string `json:"selectedParties"`
	UCCType         string   `json:"uccType"`
	Role            string   `json:"role"`
	FilingDateStart string   `json:"filingDateStart,omitempty"`
	FilingDateEnd   string   `json:"filingDateEnd,omitempty"`
}

// StateStatus reports the outcome of one state in the export loop. A
// failed state carries Error and zero records; the request as a whole
// still succeeds when any other state produced rows.
type StateStatus struct {
	State       string `json:"state"`
	RecordCount int    `json:"recordCount"`
	Error       string `json:"error,omitempty"`
}

type ExportResult struct {
	CSV         string        `json:"csv"`
	RecordCount int           `json:"recordCount"`
	States      []StateStatus `json:"states"`
}
