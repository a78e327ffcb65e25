package api

import (
	"net/url"
	"strconv"
)

// Envelope is the uniform wrapper around gateway responses.
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content          []T      `json:"content"`
	Pageable         Pageable `json:"pageable"`
	TotalElements    int64    `json:"totalElements"`
	TotalPages       int      `json:"totalPages"`
	NumberOfElements int      `json:"numberOfElements"`
	Size             int      `json:"size"`
	Number           int      `json:"number"`
	First            bool     `json:"first"`
	Last             bool     `json:"last"`
	Empty            bool     `json:"empty"`
}

type Pageable struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Offset     int64 `json:"offset"`
}

// PageRequest selects a page. Zero values are left to the server defaults.
type PageRequest struct {
	Page *int
	Size int
	Sort string
}

// Values encodes the request as query parameters.
func (p PageRequest) Values() url.Values {
	v := url.Values{}
	if p.Page != nil {
		v.Set("page", strconv.Itoa(*p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	return v
}
