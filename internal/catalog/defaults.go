package catalog

import "time"

// Default tables, matching the production configuration. A schedule file
// (see LoadFile) replaces them wholesale.

func DefaultItems() map[string]int {
	return map[string]int{
		"ipay9":         25,
		"bybid9":        31,
		"bp77":          27,
		"crown9":        39,
		"kangaroobet88": 40,
		"rolex9":        30,
		"micky13":       34,
		"bugatti13":     42,
		"kingbet9":      26,
		"me99":          28,
		"gucci9":        29,
		"pokemon13":     33,
		"mrbean9":       32,
		"novabet13":     41,
		"xpay33":        38,
		"queen13":       37,
		"spongbob13":    36,
		"winnie13":      35,
	}
}

func DefaultGroups() map[string][]string {
	return map[string][]string{
		"group_a": {
			"ipay9", "bybid9", "bp77", "crown9", "kangaroobet88",
			"rolex9", "micky13", "bugatti13", "winnie13",
		},
		"group_b": {
			"kingbet9", "me99", "gucci9", "pokemon13", "mrbean9",
			"novabet13", "xpay33", "queen13", "spongbob13",
		},
	}
}

func DefaultRotation() Rotation {
	return Rotation{
		time.Monday: "group_a",
		time.Friday: "group_b",
	}
}
