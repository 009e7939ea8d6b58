package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/diner/internal/models"
)

var ErrUsage = errors.New("usage")

func errUsage(syntax string) error {
	return fmt.Errorf("%w: %s", ErrUsage, syntax)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}

func formatOrder(o models.Order) string {
	ts := time.UnixMilli(o.Timestamp).Local().Format("2006-01-02 15:04")
	return fmt.Sprintf("  #%-4d %-36s x%-3d %s", o.ID, o.MealName, o.Quantity, ts)
}
