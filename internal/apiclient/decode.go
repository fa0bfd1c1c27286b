package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode copies the response payload into dest.
func Decode(resp *SuccessResponse, dest any) error {
	if resp == nil {
		return errors.New("nil success response")
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
