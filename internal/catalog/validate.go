package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"localmart/internal/marketerrors"
	"localmart/internal/models"
)

// MaxImages is the most photos a single listing may carry.
const MaxImages = 5

// Categories lists the accepted categories per section.
var Categories = map[Section][]string{
	SectionSell: {
		"Electronics", "Furniture", "Clothing", "Books", "Vehicles",
		"Home & Garden", "Toys & Games", "Sports & Outdoors", "Antiques",
		"Services", "Other",
	},
	SectionLostFound: {
		"Personal Belongings", "Electronics", "Keys", "Pets", "Documents",
		"Bags & Luggage", "Wallets & Purses", "Jewelry", "Other",
	},
}

var whatsappRe = regexp.MustCompile(`^\+?\d{7,15}$`)
var whatsappStrip = regexp.MustCompile(`[^\d+]`)

// NormalizeWhatsApp validates a contact number and strips everything but
// digits and the leading plus.
func NormalizeWhatsApp(number string) (string, error) {
	if number == "" {
		return "", fmt.Errorf("%w: WhatsApp number is required", marketerrors.ErrInvalidItem)
	}
	clean := strings.ReplaceAll(number, " ", "")
	if !whatsappRe.MatchString(clean) {
		return "", fmt.Errorf("%w: invalid WhatsApp number format", marketerrors.ErrInvalidItem)
	}
	return whatsappStrip.ReplaceAllString(clean, ""), nil
}

// validateListing checks input validity and business rules, normalizing the
// input in place (trimmed text, cleaned contact number, derived status).
func validateListing(section Section, in *ListingInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" || in.Description == "" {
		return fmt.Errorf("%w: name and description are required", marketerrors.ErrInvalidItem)
	}
	if in.Category == "" {
		return fmt.Errorf("%w: category is required", marketerrors.ErrInvalidItem)
	}
	if !validCategory(section, in.Category) {
		return fmt.Errorf("%w: unknown category %q", marketerrors.ErrInvalidItem, in.Category)
	}
	if len(in.Images) == 0 {
		return fmt.Errorf("%w: at least one image is required", marketerrors.ErrInvalidItem)
	}
	if len(in.Images) > MaxImages {
		return fmt.Errorf("%w: at most %d images", marketerrors.ErrInvalidItem, MaxImages)
	}

	clean, err := NormalizeWhatsApp(in.WhatsAppNumber)
	if err != nil {
		return err
	}
	in.WhatsAppNumber = clean

	switch section {
	case SectionSell:
		if in.Price == nil || *in.Price < 0 {
			return fmt.Errorf("%w: a valid price is required for items for sale", marketerrors.ErrInvalidItem)
		}
		if in.Status == "" {
			in.Status = models.StatusAvailable
		}
		if in.Status != models.StatusAvailable && in.Status != models.StatusSold {
			return fmt.Errorf("%w: invalid sale status %q", marketerrors.ErrInvalidItem, in.Status)
		}
	case SectionLostFound:
		in.Price = nil
		// Status is derived, never taken from the caller: a found-date means
		// the item was found.
		if in.DateFound != nil {
			in.Status = models.StatusFound
		} else {
			in.Status = models.StatusLost
		}
	}
	return nil
}

func validCategory(section Section, category string) bool {
	for _, c := range Categories[section] {
		if c == category {
			return true
		}
	}
	return false
}
