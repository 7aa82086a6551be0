package ebay

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/0ji3/my-trend-search/internal/metrics"
)

const (
	compatibilityLevel = "1193"
	siteIDUS           = "0" // 0 = US, 3 = UK, 15 = Australia
	clientTimeout      = 30 * time.Second
)

// Client implements Provider against the eBay Trading API. All calls go
// through a token-bucket limiter so a large account cannot burn the daily
// API quota in one burst.
type Client struct {
	http      *resty.Client
	baseURL   string
	authToken string
	limiter   *rate.Limiter
}

// NewClient creates a Trading API client for the given endpoint and
// user token.
func NewClient(baseURL, authToken string) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(clientTimeout)
	httpClient.SetRetryCount(2)
	httpClient.SetRetryWaitTime(2 * time.Second)

	return &Client{
		http:      httpClient,
		baseURL:   baseURL,
		authToken: authToken,
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
	}
}

// APIError is a failure reported by the Trading API response itself, as
// opposed to a transport error.
type APIError struct {
	Call    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebay %s failed: %s (code %s)", e.Call, e.Message, e.Code)
}

type apiError struct {
	ShortMessage string `xml:"ShortMessage"`
	LongMessage  string `xml:"LongMessage"`
	ErrorCode    string `xml:"ErrorCode"`
	SeverityCode string `xml:"SeverityCode"`
}

type getItemRequest struct {
	XMLName           xml.Name `xml:"urn:ebay:apis:eBLBaseComponents GetItemRequest"`
	ItemID            string   `xml:"ItemID"`
	DetailLevel       string   `xml:"DetailLevel"`
	IncludeWatchCount bool     `xml:"IncludeWatchCount"`
}

type getItemResponse struct {
	XMLName xml.Name   `xml:"GetItemResponse"`
	Ack     string     `xml:"Ack"`
	Errors  []apiError `xml:"Errors"`
	Item    itemDetail `xml:"Item"`
}

type itemDetail struct {
	ItemID          string `xml:"ItemID"`
	Title           string `xml:"Title"`
	HitCount        int    `xml:"HitCount"`
	WatchCount      int    `xml:"WatchCount"`
	Quantity        int    `xml:"Quantity"`
	ListingType     string `xml:"ListingType"`
	SellingStatus   sellingStatus
	PrimaryCategory primaryCategory
	PictureDetails  pictureDetails
	ListingDetails  listingDetails
}

type sellingStatus struct {
	CurrentPrice  currencyAmount `xml:"CurrentPrice"`
	BidCount      int            `xml:"BidCount"`
	QuantitySold  int            `xml:"QuantitySold"`
	ListingStatus string         `xml:"ListingStatus"`
}

type currencyAmount struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}

type primaryCategory struct {
	CategoryID   string `xml:"CategoryID"`
	CategoryName string `xml:"CategoryName"`
}

type pictureDetails struct {
	GalleryURL string `xml:"GalleryURL"`
}

type listingDetails struct {
	StartTime string `xml:"StartTime"`
	EndTime   string `xml:"EndTime"`
}

type getMyEbaySellingRequest struct {
	XMLName     xml.Name          `xml:"urn:ebay:apis:eBLBaseComponents GetMyeBaySellingRequest"`
	ActiveList  activeListRequest `xml:"ActiveList"`
	DetailLevel string            `xml:"DetailLevel"`
}

type activeListRequest struct {
	Include    bool              `xml:"Include"`
	Pagination paginationRequest `xml:"Pagination"`
}

type paginationRequest struct {
	EntriesPerPage int `xml:"EntriesPerPage"`
	PageNumber     int `xml:"PageNumber"`
}

type getMyEbaySellingResponse struct {
	XMLName    xml.Name       `xml:"GetMyeBaySellingResponse"`
	Ack        string         `xml:"Ack"`
	Errors     []apiError     `xml:"Errors"`
	ActiveList activeListResp `xml:"ActiveList"`
}

type activeListResp struct {
	Items      []summaryItem    `xml:"ItemArray>Item"`
	Pagination paginationResult `xml:"PaginationResult"`
}

type summaryItem struct {
	ItemID string `xml:"ItemID"`
	Title  string `xml:"Title"`
}

type paginationResult struct {
	TotalNumberOfPages   int `xml:"TotalNumberOfPages"`
	TotalNumberOfEntries int `xml:"TotalNumberOfEntries"`
}

// GetActiveListings fetches one page of the seller's active listings via
// GetMyeBaySelling.
func (c *Client) GetActiveListings(ctx context.Context, page, entriesPerPage int) (*ActiveListingsPage, error) {
	body, err := c.call(ctx, "GetMyeBaySelling", getMyEbaySellingRequest{
		ActiveList: activeListRequest{
			Include: true,
			Pagination: paginationRequest{
				EntriesPerPage: entriesPerPage,
				PageNumber:     page,
			},
		},
		DetailLevel: "ReturnAll",
	})
	if err != nil {
		return nil, err
	}

	var parsed getMyEbaySellingResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		metrics.EbayErrorsTotal.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("GetMyeBaySelling parse failed: %w", err)
	}
	if err := ackError("GetMyeBaySelling", parsed.Ack, parsed.Errors); err != nil {
		return nil, err
	}

	result := &ActiveListingsPage{
		Items:        make([]ItemSummary, 0, len(parsed.ActiveList.Items)),
		TotalPages:   parsed.ActiveList.Pagination.TotalNumberOfPages,
		TotalEntries: parsed.ActiveList.Pagination.TotalNumberOfEntries,
	}
	for _, item := range parsed.ActiveList.Items {
		result.Items = append(result.Items, ItemSummary{ItemID: item.ItemID, Title: item.Title})
	}
	if result.TotalPages == 0 {
		result.TotalPages = 1
	}
	return result, nil
}

// GetItem fetches full details for a single listing, including HitCount
// (views) and WatchCount.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	body, err := c.call(ctx, "GetItem", getItemRequest{
		ItemID:            itemID,
		DetailLevel:       "ReturnAll",
		IncludeWatchCount: true,
	})
	if err != nil {
		return nil, err
	}

	var parsed getItemResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		metrics.EbayErrorsTotal.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("GetItem parse failed: %w", err)
	}
	if err := ackError("GetItem", parsed.Ack, parsed.Errors); err != nil {
		return nil, err
	}
	return parsed.Item.toItem(), nil
}

// call marshals the request, waits on the rate limiter and performs the
// Trading API POST.
func (c *Client) call(ctx context.Context, callName string, req any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := xml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s marshal failed: %w", callName, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-EBAY-API-SITEID", siteIDUS).
		SetHeader("X-EBAY-API-COMPATIBILITY-LEVEL", compatibilityLevel).
		SetHeader("X-EBAY-API-CALL-NAME", callName).
		SetHeader("X-EBAY-API-IAF-TOKEN", c.authToken).
		SetHeader("Content-Type", "text/xml; charset=utf-8").
		SetBody(xml.Header + string(payload)).
		Post(c.baseURL)
	if err != nil {
		metrics.EbayErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("%s request failed: %w", callName, err)
	}
	metrics.EbayRequestsTotal.Inc()

	if resp.StatusCode() != 200 {
		metrics.EbayErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("%s returned HTTP %d", callName, resp.StatusCode())
	}
	return resp.Body(), nil
}

// ackError converts a failure Ack plus its Errors block into an APIError.
// "Warning" acks are treated as success.
func ackError(call, ack string, errs []apiError) error {
	if ack == "Success" || ack == "Warning" {
		return nil
	}
	apiErr := &APIError{Call: call, Code: "unknown", Message: "unknown error"}
	for _, e := range errs {
		if e.SeverityCode == "Error" || apiErr.Code == "unknown" {
			apiErr.Code = e.ErrorCode
			apiErr.Message = e.LongMessage
			if apiErr.Message == "" {
				apiErr.Message = e.ShortMessage
			}
		}
	}
	metrics.EbayErrorsTotal.WithLabelValues("api").Inc()
	return apiErr
}

func (d *itemDetail) toItem() *Item {
	item := &Item{
		ItemID:        d.ItemID,
		Title:         d.Title,
		Currency:      d.SellingStatus.CurrentPrice.CurrencyID,
		ViewCount:     d.HitCount,
		WatchCount:    d.WatchCount,
		BidCount:      d.SellingStatus.BidCount,
		Quantity:      d.Quantity,
		QuantitySold:  d.SellingStatus.QuantitySold,
		ListingType:   d.ListingType,
		ListingStatus: d.SellingStatus.ListingStatus,
		CategoryID:    d.PrimaryCategory.CategoryID,
		CategoryName:  d.PrimaryCategory.CategoryName,
		ImageURL:      d.PictureDetails.GalleryURL,
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}
	if price, err := decimal.NewFromString(d.SellingStatus.CurrentPrice.Value); err == nil {
		item.CurrentPrice = price
	}
	if t, err := time.Parse(time.RFC3339, d.ListingDetails.StartTime); err == nil {
		item.StartTime = &t
	}
	if t, err := time.Parse(time.RFC3339, d.ListingDetails.EndTime); err == nil {
		item.EndTime = &t
	}
	return item
}
