package challenge

import "github.com/sakif/challenge-bot/internal/model"

// builtinChallenges seeds the dataset when the remote source is unavailable
// at startup.
var builtinChallenges = []model.ChallengeDay{
	{
		Day:                1,
		ContractName:       "ClickCounter.sol",
		Week:               "Week 1: Solidity Fundamentals",
		ExampleApplication: "A simple counter contract to learn variable declaration, function creation, and basic arithmetic. Like a YouTube view counter, tracking how many times a button is clicked.",
		ConceptsTaught:     []string{"Basic Solidity syntax", "Variables (uint)", "Increment/Decrement functions"},
		LogicalProgression: "Foundational syntax and basic contract structure.",
	},
	{
		Day:                2,
		ContractName:       "SaveMyName.sol",
		Week:               "Week 1: Solidity Fundamentals",
		ExampleApplication: "A contract that stores and retrieves a user's name and status, teaching basic data storage. Like Instagram profiles, where users can store and retrieve their names.",
		ConceptsTaught:     []string{"State variables (string, bool)", "Storage and retrieval"},
		LogicalProgression: "Introduces data types and state management.",
	},
	{
		Day:                3,
		ContractName:       "PollStation.sol",
		Week:               "Week 1: Solidity Fundamentals",
		ExampleApplication: "A simple voting contract where users can vote, demonstrating arrays and mappings. Like Twitter/X polls, where users vote for their favorite option.",
		ConceptsTaught:     []string{"Arrays (uint[])", "Mappings (mapping(address => uint))", "Simple voting logic"},
		LogicalProgression: "Introduces complex data structures (arrays, mappings) and logic.",
	},
}
