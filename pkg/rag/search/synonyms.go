package search

// conceptGroups maps a concept key to words shoppers use for it.
var conceptGroups = map[string][]string{
	"price":    {"cost", "pricing", "affordable", "expensive", "cheap", "discount"},
	"shipping": {"delivery", "ship", "courier", "dispatch", "freight"},
	"return":   {"refund", "exchange", "returns", "money back"},
	"size":     {"fit", "dimensions", "measurement", "sizing"},
	"contact":  {"email", "phone", "support", "help"},
	"payment":  {"pay", "card", "checkout", "paypal"},
	"stock":    {"available", "availability", "inventory", "in stock"},
	"hours":    {"open", "opening", "schedule", "closed"},
	"warranty": {"guarantee", "repair", "defect"},
	"color":    {"colour", "shade"},
}

// conceptsFor returns the groups a query word belongs to, by key or member.
func conceptsFor(word string) []string {
	var keys []string
	for key, members := range conceptGroups {
		if word == key {
			keys = append(keys, key)
			continue
		}
		for _, m := range members {
			if m == word {
				keys = append(keys, key)
				break
			}
		}
	}
	return keys
}
