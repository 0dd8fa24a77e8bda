package testutil

import "reflect"

// People returns a fresh copy of the sample dataset used across tests.
// Records are decoded-JSON shaped: map[string]any with float64 numbers.
//
// Notable rows:
//   - 0 Ingrid: premium null, friends include "Nadine"
//   - 3 Justus: inactive, no registration field
//   - 6 Andrea: nested contact with null phone
//   - 9 Gonzalez: used as a first name on purpose
func People() []any {
	return []any{
		person("Ingrid", "Berg", 41, true, nil, "2019-03-14T09:12:00.000Z", 4.8,
			[]any{"Nadine", "Justus"}, "12 Colorado Ave, Denver", contact("ingrid@example.com", "555-0100")),
		person("Nadine", "Hart", 25, true, "gold", "2021-07-01T00:00:00.000Z", 4.25,
			[]any{"Ingrid"}, "4 Elm St, Boulder, Colorado", contact("nadine@example.com", "555-0101")),
		person("Tobias", "Lind", 17, false, "silver", "2022-11-30T18:45:00.000Z", 3.1,
			[]any{}, "88 Harbor Rd, Portland", nil),
		map[string]any{
			"firstName":  "Justus",
			"lastName":   "Krone",
			"age":        float64(34),
			"isActive":   false,
			"premium":    nil,
			"reputation": 2.9,
			"friends":    []any{"Ingrid", "Mara"},
			"address":    "7 Canal St, Amsterdam",
		},
		person("Mara", "Quint", 52, true, "gold", "2015-01-20T12:00:00.000Z", 4.9,
			[]any{"Justus"}, "301 Pine St, Seattle", contact("mara@example.com", "555-0104")),
		person("Ivo", "Stark", 10, true, nil, "2023-05-05T05:05:05.000Z", 1.5,
			[]any{"Tobias"}, "2 Main St, Aspen, Colorado", nil),
		person("Andrea", "Voss", 29, false, "bronze", "2020-01-01T00:00:00.000Z", 4.25,
			[]any{"Nadine", "Ivo"}, "19 Lake Dr, Madison", contact("andrea@example.com", nil)),
		person("Leon", "Wirth", 45, false, nil, "2018-08-08T08:08:08.000Z", 3.75,
			[]any{}, "5 Ridge Way, Boise", contact("leon@example.com", "555-0107")),
		person("Ingo", "Falk", 38, true, "silver", "2020-06-15T10:30:00.000Z", 4.0,
			[]any{"Leon"}, "63 Mill Ln, Golden, Colorado", contact("ingo@example.com", "555-0108")),
		person("Gonzalez", "Ruiz", 31, false, "gold", "2017-12-24T20:00:00.000Z", 2.5,
			[]any{"Andrea", "Nadine"}, "11 Sol Ave, Tucson", contact("gonzalez@example.com", "555-0109")),
		person("Alma", "Reed", 15, false, nil, "2024-02-29T00:00:00.000Z", 0.5,
			[]any{"Ivo"}, "9 Birch Ct, Fargo", nil),
		person("Enid", "Holt", 63, true, "bronze", "2012-09-09T09:09:09.000Z", 5,
			[]any{"Mara", "Leon", "Ingo"}, "14 Summit Blvd, Vail, Colorado", contact("enid@example.com", "555-0111")),
	}
}

func person(first, last string, age float64, active bool, premium any, registration string,
	reputation float64, friends []any, address string, contact any) map[string]any {
	return map[string]any{
		"firstName":    first,
		"lastName":     last,
		"age":          age,
		"isActive":     active,
		"premium":      premium,
		"registration": registration,
		"reputation":   reputation,
		"friends":      friends,
		"address":      address,
		"contact":      contact,
	}
}

func contact(email string, phone any) map[string]any {
	return map[string]any{"email": email, "phone": phone}
}

// Ages returns the three-record dataset of the end-to-end example:
// ages 10, 25 and 41.
func Ages() []any {
	return []any{
		map[string]any{"age": float64(10)},
		map[string]any{"age": float64(25)},
		map[string]any{"age": float64(41)},
	}
}

// Indexes returns the positions of want's elements in all, compared by
// identity of the underlying maps. It is meant for asserting filter output
// against a dataset.
func Indexes(all, want []any) []int {
	out := make([]int, 0, len(want))
	for _, w := range want {
		for i, a := range all {
			if sameRecord(a, w) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func sameRecord(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if !aok || !bok {
		return false
	}
	return reflect.ValueOf(am).UnsafePointer() == reflect.ValueOf(bm).UnsafePointer()
}
