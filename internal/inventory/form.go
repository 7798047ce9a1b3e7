package inventory

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseNewItemForm maps the add form to a payload. Name, price and stock are
// all required; price and stock are coerced to non-negative integers.
func ParseNewItemForm(form url.Values) (NewItemInput, error) {
	name := strings.TrimSpace(form.Get("name"))
	if name == "" {
		return NewItemInput{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	price, err := parseFormInt(form, "price")
	if err != nil {
		return NewItemInput{}, err
	}
	stock, err := parseFormInt(form, "stock")
	if err != nil {
		return NewItemInput{}, err
	}
	return NewItemInput{Name: name, Price: price, Stock: stock}, nil
}

// ParseItemID reads a row reference posted by the delete action.
func ParseItemID(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q is not a positive integer", ErrInvalidInput, value)
	}
	return id, nil
}

func parseFormInt(form url.Values, field string) (int, error) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidInput, field, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	return n, nil
}
