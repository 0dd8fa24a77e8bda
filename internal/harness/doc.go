// Package harness provides conformance testing for filter expressions.
//
// A scenario pairs a record collection with an expression and the indexes
// the expression must select. The harness runs each scenario through every
// public entry point (Runner, Filter and FilterBatch at several batch
// sizes) and fails when they disagree with each other or with the
// expectation.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	records:                  # or records_file: people.json
//	  - { age: 10 }
//	  - { age: 25 }
//	expression:
//	  - { key: age, op: ">", val: 20 }
//	batch_sizes: [1, 2]
//	expect:
//	  matched: [1]
//	assertions:
//	  - type: count
//	    count: 1
//	  - type: includes
//	    where: { age: 25 }
//
// records_file is resolved relative to the scenario file and may be any
// source the store package reads (JSON, NDJSON, YAML, compressed, SQLite).
//
// # Assertion Types
//
//   - count: exactly N records match
//   - includes: some matching record has all the given field values
//   - excludes: no matching record has all the given field values
//   - anomalies: exactly N records were forced to false by a malformed program
//
// # Deterministic Testing
//
// Program IDs come from testutil.FixedIDGenerator, so results and golden
// snapshots are byte-identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/ages.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
