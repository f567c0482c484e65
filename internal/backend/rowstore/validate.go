package rowstore

import (
	"fmt"
	"strings"

	"github.com/miccroten/mtadmin/internal/inbox"
)

// validate flags rows missing fields the dashboard displays. The submission
// path is outside this system, so incomplete rows can exist; they are kept
// for display but logged at the boundary.
func validate(m *inbox.Message) error {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Email == "" {
		missing = append(missing, "email")
	}
	if m.Body == "" {
		missing = append(missing, "message")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing %s", strings.Join(missing, ", "))
}
