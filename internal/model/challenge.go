package model

// ChallengeDay is one unit of curriculum content, keyed by its 1-based offset
// from the challenge start date.
//
// Records coming from the remote dataset fill the curriculum fields
// (ContractName, Week, ...). Records extracted from the live calendar page
// only carry Title, Description and ConceptsTaught.
type ChallengeDay struct {
	Day                int      `json:"day"`
	ContractName       string   `json:"contractName,omitempty"`
	Week               string   `json:"week,omitempty"`
	ExampleApplication string   `json:"exampleApplication,omitempty"`
	ConceptsTaught     []string `json:"conceptsTaught,omitempty"`
	LogicalProgression string   `json:"logicalProgression,omitempty"`
	YouTubeLink        string   `json:"youtubeLink,omitempty"`
	SolutionLink       string   `json:"solutionLink,omitempty"`
	Title              string   `json:"title,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// DisplayTitle is the name to announce the challenge under.
func (c ChallengeDay) DisplayTitle() string {
	switch {
	case c.ContractName != "":
		return c.ContractName
	case c.Title != "":
		return c.Title
	default:
		return ""
	}
}
