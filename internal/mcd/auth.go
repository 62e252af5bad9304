package mcd

import (
	"context"
	"fmt"
)

type signInRequest struct {
	MarketID     string  `json:"marketId"`
	Application  string  `json:"application"`
	LanguageName string  `json:"languageName"`
	Platform     string  `json:"platform"`
	VersionID    string  `json:"versionId"`
	Nonce        string  `json:"nonce"`
	Hash         string  `json:"hash"`
	UserName     string  `json:"userName"`
	Password     string  `json:"password"`
	NewPassword  *string `json:"newPassword"`
}

type signInResponse struct {
	Data struct {
		AccessData struct {
			Token string `json:"Token"`
		} `json:"AccessData"`
		CustomerData struct {
			ZipCode string `json:"ZipCode"`
		} `json:"CustomerData"`
	} `json:"Data"`
}

// SignIn authenticates the customer and attaches the access token to every later request
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	payload := signInRequest{
		MarketID:     c.cfg.Market,
		Application:  c.cfg.Application,
		LanguageName: c.cfg.Language,
		Platform:     c.cfg.Platform,
		VersionID:    c.cfg.Version,
		Nonce:        c.cfg.Nonce,
		Hash:         c.cfg.Hash,
		UserName:     email,
		Password:     password,
	}

	body, err := c.post(ctx, signInPath, payload)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	var resp signInResponse
	if err := decodeResult(signInPath, body, &resp); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	c.username = email
	c.token = resp.Data.AccessData.Token
	c.zipCode = resp.Data.CustomerData.ZipCode
	c.http.SetHeader("Token", c.token)

	c.logger.Info("signed_in", "Customer signed in", "", map[string]interface{}{
		"username": email,
	})

	return nil
}

// Username returns the signed-in email, empty before SignIn
func (c *Client) Username() string {
	return c.username
}

// ZipCode returns the zip code stored on the account
func (c *Client) ZipCode() string {
	return c.zipCode
}

func (c *Client) SignedIn() bool {
	return c.username != ""
}

// RegisterRequest describes a new account. Empty names default to "First" and "Last".
type RegisterRequest struct {
	Email     string
	Password  string
	ZipCode   string
	FirstName string
	LastName  string
}

type notificationPreferences struct {
	AppOfferExpirationOption   int  `json:"AppNotificationPreferences_OfferExpirationOption"`
	EmailLimitedTimeOffers     bool `json:"EmailNotificationPreferences_LimitedTimeOffers"`
	AppEnabled                 bool `json:"AppNotificationPreferences_Enabled"`
	EmailEverydayOffers        bool `json:"EmailNotificationPreferences_EverydayOffers"`
	EmailYourOffers            bool `json:"EmailNotificationPreferences_YourOffers"`
	AppYourOffers              bool `json:"AppNotificationPreferences_YourOffers"`
	AppPunchcardOffers         bool `json:"AppNotificationPreferences_PunchcardOffers"`
	AppLimitedTimeOffers       bool `json:"AppNotificationPreferences_LimitedTimeOffers"`
	EmailOfferExpirationOption int  `json:"EmailNotificationPreferences_OfferExpirationOption"`
	EmailEnabled               bool `json:"EmailNotificationPreferences_Enabled"`
	EmailPunchcardOffers       bool `json:"EmailNotificationPreferences_PunchcardOffers"`
	AppEverydayOffers          bool `json:"AppNotificationPreferences_EverydayOffers"`
}

type registerPayload struct {
	MarketID                       string                  `json:"marketId"`
	Application                    string                  `json:"application"`
	LanguageName                   string                  `json:"languageName"`
	Platform                       string                  `json:"platform"`
	UserName                       string                  `json:"userName"`
	Password                       string                  `json:"password"`
	FirstName                      string                  `json:"firstName"`
	LastName                       string                  `json:"lastName"`
	NickName                       *string                 `json:"nickName"`
	MobileNumber                   string                  `json:"mobileNumber"`
	EmailAddress                   string                  `json:"emailAddress"`
	IsPrivacyPolicyAccepted        bool                    `json:"isPrivacyPolicyAccepted"`
	PreferredNotification          int                     `json:"preferredNotification"`
	ReceivePromotions              bool                    `json:"receivePromotions"`
	CardItems                      []interface{}           `json:"cardItems"`
	AccountItems                   []interface{}           `json:"accountItems"`
	ZipCode                        string                  `json:"zipCode"`
	OptInForCommunicationChannel   bool                    `json:"optInForCommunicationChannel"`
	OptInForSurveys                bool                    `json:"optInForSurveys"`
	OptInForProgramChanges         bool                    `json:"optInForProgramChanges"`
	OptInForContests               bool                    `json:"optInForContests"`
	OptInForOtherMarketingMessages bool                    `json:"optInForOtherMarketingMessages"`
	NotificationPreferences        notificationPreferences `json:"notificationPreferences"`
	PreferredOfferCategories       []interface{}           `json:"preferredOfferCategories"`
	SubscribedToOffer              bool                    `json:"subscribedToOffer"`
	IsActive                       bool                    `json:"isActive"`
}

// Register creates a customer account with every notification turned off
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.FirstName == "" {
		req.FirstName = "First"
	}
	if req.LastName == "" {
		req.LastName = "Last"
	}

	payload := registerPayload{
		MarketID:                 c.cfg.Market,
		Application:              c.cfg.Application,
		LanguageName:             c.cfg.Language,
		Platform:                 c.cfg.Platform,
		UserName:                 req.Email,
		Password:                 req.Password,
		FirstName:                req.FirstName,
		LastName:                 req.LastName,
		EmailAddress:             req.Email,
		IsPrivacyPolicyAccepted:  true,
		ReceivePromotions:        true,
		CardItems:                []interface{}{},
		AccountItems:             []interface{}{},
		ZipCode:                  req.ZipCode,
		PreferredOfferCategories: []interface{}{},
		SubscribedToOffer:        true,
		IsActive:                 true,
	}

	body, err := c.post(ctx, registerPath, payload)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if err := decodeResult(registerPath, body, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	c.logger.Info("account_registered", "Registered new account", "", map[string]interface{}{
		"username": req.Email,
		"zip_code": req.ZipCode,
	})

	return nil
}
