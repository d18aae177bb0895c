package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/accounts/pkg/user"
)

// Query defaults applied when a parameter is absent. A parameter that is
// present but unusable is passed through so the service can reject it.
const (
	defaultOrder = "desc"
	defaultPage  = 1
	defaultLimit = 10
)

func parseFilters(c *fiber.Ctx) user.Filters {
	f := user.Filters{
		Role:   user.Role(strings.TrimSpace(c.Query("role"))),
		SortBy: user.DefaultSortBy,
		Order:  defaultOrder,
		Page:   defaultPage,
		Limit:  defaultLimit,
	}
	args := c.Context().QueryArgs()
	if args.Has("sortBy") {
		f.SortBy = strings.TrimSpace(c.Query("sortBy"))
	}
	if args.Has("order") {
		f.Order = strings.TrimSpace(c.Query("order"))
	}
	if args.Has("page") {
		f.Page = atoiOrZero(c.Query("page"))
	}
	if args.Has("limit") {
		f.Limit = atoiOrZero(c.Query("limit"))
	}
	return f
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
