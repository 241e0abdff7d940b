package criteria

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Builder accumulates search criteria across dialog turns. Every setter
// either applies fully or leaves the builder unchanged.
type Builder struct {
	f fields
}

type fields struct {
	Command       Command     `json:"command,omitempty"`
	City          *hotel.City `json:"city,omitempty"`
	DateIn        *time.Time  `json:"date_in,omitempty"`
	DateOut       *time.Time  `json:"date_out,omitempty"`
	MinPrice      *int64      `json:"min_price,omitempty"`
	MaxPrice      *int64      `json:"max_price,omitempty"`
	MaxDistanceKm *float64    `json:"max_distance_km,omitempty"`
}

func NewBuilder(cmd Command) *Builder {
	return &Builder{f: fields{Command: cmd}}
}

func (b Builder) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.f)
}

func (b *Builder) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &b.f)
}

func (b *Builder) Command() Command { return b.f.Command }

func (b *Builder) SetCommand(cmd Command) error {
	if _, ok := ParseCommand(string(cmd)); !ok {
		return ErrUnknownCommand
	}
	b.f.Command = cmd
	return nil
}

func (b *Builder) SetCity(name, id string) {
	b.f.City = &hotel.City{ID: id, Name: name}
}

func (b *Builder) City() (hotel.City, bool) {
	if b.f.City == nil {
		return hotel.City{}, false
	}
	return *b.f.City, true
}

func (b *Builder) SetDateIn(d time.Time) {
	d = DateOf(d)
	b.f.DateIn = &d
}

func (b *Builder) DateIn() (time.Time, bool) {
	if b.f.DateIn == nil {
		return time.Time{}, false
	}
	return *b.f.DateIn, true
}

func (b *Builder) SetDateOut(d time.Time) {
	d = DateOf(d)
	b.f.DateOut = &d
}

func (b *Builder) DateOut() (time.Time, bool) {
	if b.f.DateOut == nil {
		return time.Time{}, false
	}
	return *b.f.DateOut, true
}

// SetMinPrice parses and commits the lower price bound.
func (b *Builder) SetMinPrice(text string) (int64, error) {
	p, err := parsePrice(text)
	if err != nil {
		return 0, err
	}
	if b.f.MaxPrice != nil && p > *b.f.MaxPrice {
		return 0, ErrRangeConflict
	}
	b.f.MinPrice = &p
	return p, nil
}

// SetMaxPrice parses and commits the upper price bound.
func (b *Builder) SetMaxPrice(text string) (int64, error) {
	p, err := parsePrice(text)
	if err != nil {
		return 0, err
	}
	if b.f.MinPrice != nil && p < *b.f.MinPrice {
		return 0, ErrRangeConflict
	}
	b.f.MaxPrice = &p
	return p, nil
}

func (b *Builder) MinPrice() (int64, bool) {
	if b.f.MinPrice == nil {
		return 0, false
	}
	return *b.f.MinPrice, true
}

func (b *Builder) MaxPrice() (int64, bool) {
	if b.f.MaxPrice == nil {
		return 0, false
	}
	return *b.f.MaxPrice, true
}

// SetMaxDistance parses and commits the distance bound in kilometres.
func (b *Builder) SetMaxDistance(text string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(text, ",", ".", 1)), 64)
	if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrInvalidNumber
	}
	b.f.MaxDistanceKm = &d
	return d, nil
}

func (b *Builder) MaxDistance() (float64, bool) {
	if b.f.MaxDistanceKm == nil {
		return 0, false
	}
	return *b.f.MaxDistanceKm, true
}

// ResetFromCity discards everything except the command.
func (b *Builder) ResetFromCity() {
	b.f = fields{Command: b.f.Command}
}

// Finalize fills unset optional bounds with their sentinels and validates the
// mandatory fields.
func (b *Builder) Finalize() (SearchCriteria, error) {
	c := SearchCriteria{
		Command:       b.f.Command,
		MinPrice:      DefaultMinPrice,
		MaxPrice:      DefaultMaxPrice,
		MaxDistanceKm: DefaultMaxDistanceKm,
	}
	if b.f.City != nil {
		c.City = *b.f.City
	}
	if b.f.DateIn != nil {
		c.DateIn = *b.f.DateIn
	}
	if b.f.DateOut != nil {
		c.DateOut = *b.f.DateOut
	}
	if b.f.MinPrice != nil {
		c.MinPrice = *b.f.MinPrice
	}
	if b.f.MaxPrice != nil {
		c.MaxPrice = *b.f.MaxPrice
	}
	if b.f.MaxDistanceKm != nil {
		c.MaxDistanceKm = *b.f.MaxDistanceKm
	}

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Command, validation.Required, validation.In(CommandLowPrice, CommandHighPrice, CommandBestDeal)),
		validation.Field(&c.City, validation.By(citySelected)),
		validation.Field(&c.DateIn, validation.Required),
		validation.Field(&c.DateOut, validation.Required, validation.By(after(c.DateIn))),
		validation.Field(&c.MaxPrice, validation.Min(c.MinPrice)),
	)
	if err != nil {
		return SearchCriteria{}, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}
	return c, nil
}

func parsePrice(text string) (int64, error) {
	p, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || p < 0 {
		return 0, ErrInvalidNumber
	}
	return p, nil
}

func citySelected(value interface{}) error {
	city, _ := value.(hotel.City)
	if city.ID == "" {
		return errors.New("must be selected")
	}
	return nil
}

func after(in time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		out, _ := value.(time.Time)
		if !in.IsZero() && !out.After(in) {
			return errors.New("must be after the check-in date")
		}
		return nil
	}
}
