// Package whatsapp builds click-to-chat links and the stock messages sent
// to customers. Delivery happens in the user's WhatsApp client.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// ErrNoPhone is returned when a phone number has no usable digits.
var ErrNoPhone = errors.New("whatsapp: phone number is empty")

const baseURL = "https://wa.me/"

// Link returns a wa.me URL that opens a chat with phone prefilled with
// message. The phone is normalised and a leading + dropped.
func Link(phone, message string) (string, error) {
	number := strings.TrimPrefix(model.NormalizePhone(phone), "+")
	if number == "" {
		return "", ErrNoPhone
	}
	link := baseURL + url.PathEscape(number)
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link, nil
}

// ThankYouMessage is sent after a sale.
func ThankYouMessage(settings model.Settings, customerName string, total float64) string {
	return fmt.Sprintf("مرحباً %s، شكراً لتسوقك من %s.\nفاتورتك بقيمة %s ج.م.",
		customerName, storeName(settings), strconv.FormatFloat(total, 'f', -1, 64))
}

// PromotionMessage is the default broadcast text for offers.
func PromotionMessage(settings model.Settings) string {
	return fmt.Sprintf("مرحباً، لدينا عروض مميزة في %s! تفضل بزيارتنا.", storeName(settings))
}

func storeName(settings model.Settings) string {
	if settings.StoreName == "" {
		return model.DefaultStoreName
	}
	return settings.StoreName
}
