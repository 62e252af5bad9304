// Package apitest runs an in-process fake of the ordering API and the geocoding
// service so client behaviour can be tested without network access.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"mcorder/internal/models"
)

const (
	resultOK         = 1
	resultFailed     = -1
	resultBadToken   = -2
	resultBadAPIKey  = -9
	resultBadLogin   = -1003
	fixtureAPIKey    = "test-key"
	fixtureToken     = "token-123"
	fixtureEmail     = "customer@example.com"
	fixturePassword  = "secret"
	fixtureCheckIn   = "CHK42"
	fixtureOrderNo   = "317"
	fixturePaymentID = 9001
)

type StoreFixture struct {
	ID     string
	Status string
	Line1  string
	City   string
	State  string
	Zip    string
	Lat    float64
	Lon    float64
	Phone  string
}

type ItemFixture struct {
	ExternalID string
	Name       string
	DoNotShow  string
}

type CategoryFixture struct {
	ID    int
	Name  string
	Items []ItemFixture
}

// Fixtures is the data the fake API serves
type Fixtures struct {
	APIKey     string
	Email      string
	Password   string
	Token      string
	ZipCode    string
	Stores     []StoreFixture
	Outages    []string
	Categories []CategoryFixture
	// Items answers single item lookups, keyed by external id.
	Items       map[string]ItemFixture
	Offers      []models.Offer
	Cards       []models.PaymentCard
	Total       string
	CheckInCode string
	PaymentID   int64
	OrderNumber string
	Latitude    string
	Longitude   string
	// Failing holds route patterns (e.g. "/v3/order/total") that answer with a failure.
	Failing map[string]bool
}

// DefaultFixtures returns a small consistent data set around (40.0,-75.0)
func DefaultFixtures() Fixtures {
	return Fixtures{
		APIKey:   fixtureAPIKey,
		Email:    fixtureEmail,
		Password: fixturePassword,
		Token:    fixtureToken,
		ZipCode:  "19104",
		Stores: []StoreFixture{
			{ID: "1234", Status: "OPEN", Line1: "100 Market St", City: "Philadelphia", State: "PA", Zip: "19104", Lat: 40.1, Lon: -75.1, Phone: "215-555-0100"},
			{ID: "5678", Status: "OPEN", Line1: "9 Chestnut St", City: "Philadelphia", State: "PA", Zip: "19106", Lat: 40.02, Lon: -75.01, Phone: "215-555-0199"},
		},
		Outages: []string{"1002"},
		Categories: []CategoryFixture{
			{ID: 10, Name: "Burgers", Items: []ItemFixture{
				{ExternalID: "1001", Name: "Big Mac", DoNotShow: "Core"},
				{ExternalID: "1002", Name: "Quarter Pounder", DoNotShow: "Core"},
				{ExternalID: "123-456", Name: "Big Mac Deal", DoNotShow: "Promotional"},
			}},
			{ID: 20, Name: "Fries & Sides", Items: []ItemFixture{
				{ExternalID: "2001", Name: "Medium Fries", DoNotShow: "Core"},
				{ExternalID: "2002", Name: "Apple Slices", DoNotShow: "Promotional"},
				{ExternalID: "1002-7", Name: "QP Combo", DoNotShow: "Promotional"},
			}},
		},
		Items: map[string]ItemFixture{
			"123":  {ExternalID: "123", Name: "Classic Burger", DoNotShow: "Core"},
			"1002": {ExternalID: "1002", Name: "Quarter Pounder", DoNotShow: "Core"},
			"3001": {ExternalID: "3001", Name: "Small Coke", DoNotShow: "Core"},
			"3002": {ExternalID: "3002", Name: "Seasonal Shake", DoNotShow: "Promotional"},
		},
		Offers: []models.Offer{
			{ID: -7, Name: "Buy one get one", ProductSets: []models.ProductSet{
				{Products: []models.ProductCode{"1001", "3001"}, Alias: "Buy"},
				{AnyProduct: true, Action: &models.OfferAction{DiscountType: 2}},
			}},
			{ID: 15, Name: "Points reward", ProductSets: []models.ProductSet{
				{Products: []models.ProductCode{"2001"}},
			}},
		},
		Cards:       []models.PaymentCard{{PaymentMethodID: 3, CustomerPaymentMethodID: 777, NickName: "Visa 1111"}},
		Total:       "11.37",
		CheckInCode: fixtureCheckIn,
		PaymentID:   fixturePaymentID,
		OrderNumber: fixtureOrderNo,
		Latitude:    "40.0",
		Longitude:   "-75.0",
		Failing:     map[string]bool{},
	}
}

// Server is a running fake
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	fixtures Fixtures
	calls    []string
	bodies   map[string][]byte
	queries  map[string]url.Values
	headers  map[string]http.Header
}

// New starts a fake serving the given fixtures. Callers must Close it.
func New(f Fixtures) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		fixtures: f,
		bodies:   make(map[string][]byte),
		queries:  make(map[string]url.Values),
		headers:  make(map[string]http.Header),
	}
	if s.fixtures.Failing == nil {
		s.fixtures.Failing = map[string]bool{}
	}

	router := gin.New()
	router.Use(s.record)
	serveAPI(router, "/v3/", s)
	router.GET("/geocode", s.geocode)

	s.Server = httptest.NewServer(router)
	return s
}

func (s *Server) BaseURL() string {
	return s.URL + "/v3"
}

func (s *Server) GeocoderURL() string {
	return s.URL + "/geocode"
}

func (s *Server) APIKey() string   { return s.fixtures.APIKey }
func (s *Server) Email() string    { return s.fixtures.Email }
func (s *Server) Password() string { return s.fixtures.Password }

// Update changes fixtures between calls
func (s *Server) Update(fn func(f *Fixtures)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.fixtures)
}

// Fail makes a route answer with a failure result
func (s *Server) Fail(route string) {
	s.Update(func(f *Fixtures) { f.Failing[route] = true })
}

// Calls returns "METHOD /path" for every request served so far
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Body returns the last request body received on a path
func (s *Server) Body(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[path]
}

// Query returns the last query string received on a path
func (s *Server) Query(path string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[path]
}

// Header returns the last request headers received on a path
func (s *Server) Header(path string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[path]
}

func (s *Server) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	path := c.Request.URL.Path
	s.mu.Lock()
	s.calls = append(s.calls, c.Request.Method+" "+path)
	s.bodies[path] = body
	s.queries[path] = c.Request.URL.Query()
	s.headers[path] = c.Request.Header.Clone()
	s.mu.Unlock()

	c.Next()
}

func serveAPI(router *gin.Engine, prefix string, s *Server) {
	api := router.Group(prefix, s.requireAPIKey)
	api.POST("customer/session/sign-in-and-authenticate", s.signIn)
	api.POST("customer/registration", s.register)
	api.GET("restaurant/location", s.stores)
	api.GET("restaurant/information", s.storeInfo)
	api.GET("nutrition/category/list", s.categories)
	api.GET("nutrition/category/detail", s.category)
	api.GET("item/nutrition/listExternal", s.lookupItem)

	authed := api.Group("", s.requireToken)
	authed.GET("customer/offer", s.offers)
	authed.GET("customer/profile", s.profile)
	authed.POST("order/total", s.total)
	authed.POST("order/pickup", s.initiate)
	authed.POST("order/pickup/:code", s.confirm)
	authed.POST("order/pickup/:code/unattended", s.unattended)
	authed.GET("orders/pickup/:code", s.pickupStatus)
}

func (s *Server) requireAPIKey(c *gin.Context) {
	s.mu.Lock()
	want := s.fixtures.APIKey
	s.mu.Unlock()

	if c.GetHeader("mcd_apikey") != want || c.GetHeader("marketId") == "" {
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"ResultCode": resultBadAPIKey})
		return
	}
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	s.mu.Lock()
	want := s.fixtures.Token
	s.mu.Unlock()

	if c.GetHeader("Token") != want {
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"ResultCode": resultBadToken})
		return
	}
	c.Next()
}

// failing reports whether the matched route was set to fail
func (s *Server) failing(c *gin.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixtures.Failing[c.FullPath()]
}

func (s *Server) signIn(c *gin.Context) {
	var req struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ResultCode": resultFailed})
		return
	}

	s.mu.Lock()
	f := s.fixtures
	s.mu.Unlock()

	if s.failing(c) || req.UserName != f.Email || req.Password != f.Password {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultBadLogin})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ResultCode": resultOK,
		"Data": gin.H{
			"AccessData":   gin.H{"Token": f.Token},
			"CustomerData": gin.H{"ZipCode": f.ZipCode},
		},
	})
}

func (s *Server) register(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK})
}

func (s *Server) stores(c *gin.Context) {
	s.mu.Lock()
	fixtures := s.fixtures.Stores
	s.mu.Unlock()

	out := make([]gin.H, 0, len(fixtures))
	for _, st := range fixtures {
		out = append(out, gin.H{
			"generalStatus": gin.H{"status": st.Status},
			"address": gin.H{
				"addressLine1": st.Line1,
				"cityTown":     st.City,
				"subdivision":  st.State,
				"postalZip":    st.Zip,
				"location":     gin.H{"lat": st.Lat, "lon": strconv.FormatFloat(st.Lon, 'f', -1, 64)},
			},
			"identifiers": gin.H{"storeIdentifier": []gin.H{
				{"identifierType": "NatlStrNumber", "identifierValue": "NSN-" + st.ID},
				{"identifierType": "POSStoreNumber", "identifierValue": st.ID},
			}},
			"storeNumbers": gin.H{"phonenumber": []gin.H{{"number": st.Phone}}},
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) storeInfo(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	s.mu.Lock()
	outages := s.fixtures.Outages
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK, "Data": gin.H{"OutageProductCodes": outages}})
}

func (s *Server) categories(c *gin.Context) {
	s.mu.Lock()
	categories := s.fixtures.Categories
	s.mu.Unlock()

	ids := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, gin.H{"category_id": category.ID})
	}
	c.JSON(http.StatusOK, gin.H{"categories": gin.H{"category": ids}})
}

func (s *Server) category(c *gin.Context) {
	id, _ := strconv.Atoi(c.Query("categoryId"))

	s.mu.Lock()
	categories := s.fixtures.Categories
	s.mu.Unlock()

	for _, category := range categories {
		if category.ID != id {
			continue
		}
		items := make([]gin.H, 0, len(category.Items))
		for _, item := range category.Items {
			items = append(items, itemJSON(item))
		}
		c.JSON(http.StatusOK, gin.H{"category": gin.H{
			"category_name": category.Name,
			"items":         gin.H{"item": items},
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "unknown category"})
}

func (s *Server) lookupItem(c *gin.Context) {
	s.mu.Lock()
	item, ok := s.fixtures.Items[c.Query("externalItemId")]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": gin.H{"message": "item not found"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": gin.H{"item": itemJSON(item)}})
}

func (s *Server) offers(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	s.mu.Lock()
	offers := s.fixtures.Offers
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK, "Data": offers})
}

func (s *Server) profile(c *gin.Context) {
	s.mu.Lock()
	cards := s.fixtures.Cards
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK, "Data": gin.H{"PaymentCard": cards}})
}

func (s *Server) total(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	s.mu.Lock()
	total := s.fixtures.Total
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"ResultCode": resultOK,
		"Data":       gin.H{"OrderView": gin.H{"TotalValue": json.RawMessage(total)}},
	})
}

func (s *Server) initiate(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	s.mu.Lock()
	f := s.fixtures
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"ResultCode": resultOK,
		"OrderView": gin.H{
			"OrderPaymentId": f.PaymentID,
			"TotalValue":     json.RawMessage(f.Total),
			"CheckInCode":    f.CheckInCode,
		},
	})
}

func (s *Server) confirm(c *gin.Context) {
	if s.failing(c) || c.Param("code") != s.checkInCode() {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK})
}

func (s *Server) unattended(c *gin.Context) {
	if s.failing(c) || c.Param("code") != s.checkInCode() {
		c.JSON(http.StatusOK, gin.H{"ResultCode": resultFailed})
		return
	}
	s.mu.Lock()
	number := s.fixtures.OrderNumber
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK, "OrderNumber": number})
}

func (s *Server) pickupStatus(c *gin.Context) {
	if s.failing(c) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": resultOK, "Data": gin.H{"Status": "pending"}})
}

func (s *Server) geocode(c *gin.Context) {
	s.mu.Lock()
	lat, lon := s.fixtures.Latitude, s.fixtures.Longitude
	s.mu.Unlock()

	if c.Query("apikey") == "" || c.Query("zip") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"OutputGeocodes": []gin.H{
		{"OutputGeocode": gin.H{"Latitude": lat, "Longitude": lon}},
	}})
}

func (s *Server) checkInCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixtures.CheckInCode
}

func itemJSON(item ItemFixture) gin.H {
	return gin.H{
		"external_id": item.ExternalID,
		"item_name":   item.Name,
		"do_not_show": item.DoNotShow,
	}
}
