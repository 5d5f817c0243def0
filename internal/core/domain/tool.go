package domain

import (
	"fmt"
	"strings"
)

// Names of the built-in lookup tools.
const (
	ToolOrderStatus = "get_order_status"
	ToolPolicyInfo  = "get_policy_info"
	ToolProductInfo = "get_product_info"
)

// ToolSpec describes a lookup tool to the conversation layer.
// Every tool takes a single string argument and returns a single string.
type ToolSpec struct {
	// Name is the dispatch name.
	Name string

	// Description tells the conversation layer when to call the tool.
	Description string

	// Param is the name of the single string argument.
	Param string

	// ParamDescription documents the argument.
	ParamDescription string
}

// DefaultQueryTemplates maps each built-in tool to the natural-language
// query it sends to retrieval. The %s receives the caller's identifier.
var DefaultQueryTemplates = map[string]string{
	ToolOrderStatus: "What is the status of order %s and what are the items?",
	ToolPolicyInfo:  "What is the company policy regarding %s?",
	ToolProductInfo: "Provide details, price, and stock status for the product: %s",
}

// OrderResultPrefix is prepended to successful order lookups.
const OrderResultPrefix = "Here is the information I found for %s:\n\n"

// ValidateQueryTemplate checks that t has exactly one %s verb and no other
// formatting verbs. A literal percent sign must be written as %%.
func ValidateQueryTemplate(t string) error {
	stripped := strings.ReplaceAll(t, "%%", "")
	if strings.Count(stripped, "%") != 1 || strings.Count(stripped, "%s") != 1 {
		return fmt.Errorf("%w: template must contain exactly one %%s", ErrInvalidInput)
	}
	return nil
}
