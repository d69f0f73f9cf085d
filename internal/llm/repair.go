package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON returns content as valid JSON. Well-formed input is returned
// as is; otherwise json-repair is tried (code fences, trailing commas,
// single quotes, unclosed brackets), then an Hjson parse.
func RepairJSON(content []byte) ([]byte, bool, error) {
	content = stripFence(bytes.TrimSpace(content))
	if json.Valid(content) {
		return content, false, nil
	}
	if repaired, err := jsonrepair.RepairJSON(string(content)); err == nil && json.Valid([]byte(repaired)) {
		return []byte(repaired), true, nil
	}
	var v any
	if err := hjson.Unmarshal(content, &v); err != nil {
		return nil, false, fmt.Errorf("repair json: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("repair json: %w", err)
	}
	return out, true, nil
}

// stripFence removes a surrounding ``` or ```json markdown fence.
func stripFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	} else {
		b = b[3:]
	}
	return bytes.TrimSpace(bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```")))
}
