package passportindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// HenleyService implements Provider for the Henley Passport Index v3 API
type HenleyService struct {
	BaseService
}

// NewHenleyService creates a new instance
func NewHenleyService(opts Options) *HenleyService {
	return &HenleyService{
		BaseService: NewBaseService(opts),
	}
}

type countriesResponse struct {
	Countries []CountryPayload `json:"countries"`
}

// ListCountries implements Provider
func (s *HenleyService) ListCountries(ctx context.Context) ([]CountryPayload, error) {
	reqURL := strings.TrimRight(s.baseURL, "/") + "/countries"

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp countriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(reqURL, err)
	}
	if resp.Countries == nil {
		return nil, malformed(reqURL, errors.New(`missing "countries" field`))
	}

	countries := make([]CountryPayload, 0, len(resp.Countries))
	for _, c := range resp.Countries {
		c.Code = strings.TrimSpace(c.Code)
		if c.Code == "" {
			continue
		}
		if c.Data == nil {
			c.Data = YearlyData{}
		}
		countries = append(countries, c)
	}
	return countries, nil
}

// FetchRequirements implements Provider
func (s *HenleyService) FetchRequirements(ctx context.Context, code string) (Requirements, error) {
	reqURL := fmt.Sprintf("%s/visa-single/%s", strings.TrimRight(s.baseURL, "/"), url.PathEscape(code))

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, malformed(reqURL, errors.New("empty visa-single response"))
	}

	var reqs Requirements
	if err := json.Unmarshal(trimmed, &reqs); err != nil {
		return nil, malformed(reqURL, err)
	}
	return reqs, nil
}
