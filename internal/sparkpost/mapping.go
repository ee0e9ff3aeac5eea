package sparkpost

import (
	"sort"
	"strings"
)

// Params is an SDK-style flat parameter bag. Keys listed in
// transmissionMapping are remapped to their nested JSON paths before
// sending; unknown keys pass through unchanged.
type Params map[string]any

// transmissionMapping remaps the SDK-style camelCase keys accepted by
// CreateTransmission to the dotted paths of the transmissions JSON
// schema. This table is a public contract; changing a mapped path is a
// breaking change.
var transmissionMapping = map[string]string{
	"campaign":         "campaign_id",
	"metadata":         "metadata",
	"substitutionData": "substitution_data",
	"description":      "description",
	"returnPath":       "return_path",
	"replyTo":          "content.reply_to",
	"subject":          "content.subject",
	"from":             "content.from",
	"html":             "content.html",
	"text":             "content.text",
	"attachments":      "content.attachments",
	"rfc822":           "content.email_rfc822",
	"customHeaders":    "content.headers",
	"recipients":       "recipients",
	"recipientList":    "recipients.list_id",
	"template":         "content.template_id",
	"trackOpens":       "options.open_tracking",
	"trackClicks":      "options.click_tracking",
	"startTime":        "options.start_time",
	"transactional":    "options.transactional",
	"sandbox":          "options.sandbox",
	"useDraftTemplate": "use_draft_template",
	"inlineCss":        "options.inline_css",
}

// setDotted stores val at the dotted path inside m, creating
// intermediate objects as needed. Existing intermediate maps are merged
// into, not replaced, so disjoint paths under a common prefix coexist.
// When both the existing leaf and val are objects they are merged too,
// with val winning per key.
func setDotted(m map[string]any, path string, val any) {
	steps := strings.Split(path, ".")
	loc := m
	for _, step := range steps[:len(steps)-1] {
		next, ok := loc[step].(map[string]any)
		if !ok {
			next = make(map[string]any)
			loc[step] = next
		}
		loc = next
	}
	last := steps[len(steps)-1]
	if dst, ok := loc[last].(map[string]any); ok {
		if src, ok := val.(map[string]any); ok {
			mergeInto(dst, src)
			return
		}
	}
	loc[last] = val
}

// mergeInto copies src into dst recursively. Scalars and mismatched
// types from src replace what dst holds.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				mergeInto(cur, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// mapParams applies a key mapping table to a flat parameter bag,
// producing the nested structure the API expects. Mapped keys are
// applied first and unmapped keys after, each group in sorted order,
// so a raw object passed through the bag deterministically wins over
// a mapped sibling targeting the same path.
func mapParams(data Params, mapping map[string]string) map[string]any {
	var mappedKeys, rawKeys []string
	for k := range data {
		if _, ok := mapping[k]; ok {
			mappedKeys = append(mappedKeys, k)
		} else {
			rawKeys = append(rawKeys, k)
		}
	}
	sort.Strings(mappedKeys)
	sort.Strings(rawKeys)

	mapped := make(map[string]any, len(data))
	for _, k := range mappedKeys {
		setDotted(mapped, mapping[k], data[k])
	}
	for _, k := range rawKeys {
		setDotted(mapped, k, data[k])
	}
	return mapped
}
