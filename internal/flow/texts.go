package flow

import (
	"fmt"
	"html"
	"strings"

	"github.com/capitanshop/shopbot/internal/chat"
	"github.com/capitanshop/shopbot/internal/listing"
)

const (
	textWelcome       = "Welcome! Please choose one of the options."
	textNoProducts    = "No products found."
	textProductList   = "📋 Product list:"
	textNoUsers       = "No users found."
	textNotFound      = "The requested product was not found."
	textSendFailed    = "Sending product details failed."
	textTelegramWait  = "Connecting you to Telegram support..."
	textWhatsAppWait  = "Connecting you to WhatsApp support..."
	textManage        = "📦 Manage products"
	textManageUsers   = "👤 Manage users"
	textAskImage      = "🖼 Please send the product image."
	textAskDeleteID   = "🔻 Please send the ID of the product you want to delete:"
	textNeedImage     = "❌ Please send an image."
	textImageFailed   = "❌ Could not save the image, please try again."
	textAskTitle      = "📝 Please enter the product title."
	textTitleShort    = "❌ The product title is too short."
	textAskDesc       = "📄 Please enter the product description."
	textDescShort     = "❌ The description is too short."
	textDescLong      = "❌ The description is too long, please keep it under 800 characters."
	textTitleLong     = "❌ The product title is too long, please keep it under 64 characters."
	textAskPrice      = "💰 Please enter the product price (digits only)."
	textDigitsOnly    = "❌ Please enter digits only."
	textAddFailed     = "❌ Could not save the product, please send the price again."
	textAnnounceFail  = "⚠️ The product was saved but the announcement could not be sent."
	textDeleteMissing = "❌ No product found with this ID."
	textDeleteFailed  = "❌ Could not delete the product, please try again."
	textStartOver     = "❌ The entered data is not valid. Please start over."
	textStateFailed   = "❌ Something went wrong, please try again."
	textCancelled     = "Cancelled."
	textNothingCancel = "Nothing to cancel."
	textSearchUsage   = "Usage: /search <text>"
	textToggleUsage   = "Usage: /hide <id> or /show <id>"
)

const (
	btnStore    = "🛍 Store"
	btnTelegram = "📞 Telegram support"
	btnWhatsApp = "💬 WhatsApp support"
	btnProducts = "📦 Product list"
	btnManage   = "⚙️ Manage products"
	btnUsers    = "👤 Manage users"
	btnAdd      = "➕ Add product"
	btnDelete   = "🗑 Delete product"
	btnBack     = "🔙 Back"
	btnBuy      = "🗨 Buy and talk to support"
	btnContact  = "🗨 Talk to support"
)

func (c *Controller) price(v int64) string {
	return fmt.Sprintf("%d %s", v, c.shop.Currency)
}

func (c *Controller) mainMenu(admin bool) chat.Reply {
	rows := chat.Column(
		chat.Button{Text: btnStore, Data: ActionStore},
		chat.Button{Text: btnTelegram, Data: ActionTelegramSupport},
		chat.Button{Text: btnWhatsApp, Data: ActionWhatsAppSupport},
		chat.Button{Text: btnProducts, Data: ActionProductList},
	)
	if admin {
		rows = append(rows, chat.Column(
			chat.Button{Text: btnManage, Data: ActionManageProducts},
			chat.Button{Text: btnUsers, Data: ActionManageUsers},
		)...)
	}
	return chat.Reply{Text: textWelcome, Buttons: rows}
}

// productButtons renders one buy button per product.
func (c *Controller) productButtons(views []listing.ProductView) chat.Reply {
	if len(views) == 0 {
		return chat.Reply{Text: textNoProducts}
	}
	buttons := make([]chat.Button, 0, len(views))
	for _, p := range views {
		buttons = append(buttons, chat.Button{
			Text: fmt.Sprintf("%s - %s", p.Name, c.price(p.Price)),
			Data: BuyPrefix + fmt.Sprint(p.ID),
		})
	}
	return chat.Reply{Text: textProductList, Buttons: chat.Column(buttons...)}
}

func (c *Controller) productCard(p listing.ProductView) chat.Reply {
	caption := fmt.Sprintf("🛍 <b>%s</b>\n\n📄 %s\n💰 Price: %s",
		html.EscapeString(p.Name), html.EscapeString(p.Description), html.EscapeString(c.price(p.Price)))
	return chat.Reply{
		Text:    caption,
		Photo:   p.Image,
		HTML:    true,
		Buttons: chat.Column(chat.Button{Text: btnBuy, URL: c.shop.TelegramSupportURL}),
	}
}

func (c *Controller) announcement(p AwaitingPrice, price int64) chat.Reply {
	return chat.Reply{
		Text:    fmt.Sprintf("🛍 %s\n\n📄 %s\n💰 Price: %s", p.Name, p.Description, c.price(price)),
		Photo:   p.Image,
		Buttons: chat.Column(chat.Button{Text: btnContact, URL: c.shop.TelegramSupportURL}),
	}
}

func (c *Controller) inventory(views []listing.ProductView) string {
	if len(views) == 0 {
		return textNoProducts
	}
	var b strings.Builder
	b.WriteString("📋 Existing products:")
	for _, p := range views {
		fmt.Fprintf(&b, "\nID: %d - %s - %s", p.ID, p.Name, c.price(p.Price))
		if !p.Available {
			b.WriteString(" (hidden)")
		}
	}
	return b.String()
}

func userList(ids []int64) string {
	if len(ids) == 0 {
		return textManageUsers + "\n\n" + textNoUsers
	}
	var b strings.Builder
	b.WriteString(textManageUsers + "\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "\n- %d", id)
	}
	return b.String()
}
