package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/capitanshop/shopbot/core/telegram/middleware"
	"github.com/capitanshop/shopbot/core/telegram/state"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/chat"
	"github.com/capitanshop/shopbot/internal/listing"
)

const (
	adminID    int64 = 1
	customerID int64 = 2
)

type ControllerSuite struct {
	suite.Suite
	ctx       context.Context
	catalog   *fakeCatalog
	users     *fakeUsers
	media     *fakeMedia
	announcer *fakeBroadcaster
	sessions  *state.MemoryStore[Pending]
	ctrl      *Controller
	out       *recorder
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.catalog = newFakeCatalog()
	s.users = &fakeUsers{ids: map[int64]bool{}}
	s.media = &fakeMedia{}
	s.announcer = &fakeBroadcaster{}
	s.sessions = state.NewMemoryStore[Pending](0)
	s.out = &recorder{}
	s.ctrl = New(Deps{
		Catalog:     s.catalog,
		Users:       s.users,
		Listing:     listing.NewService(s.catalog),
		Media:       s.media,
		Broadcaster: s.announcer,
		Sessions:    s.sessions,
		Admins:      middleware.NewAdminSet([]int64{adminID}),
		Shop: Shop{
			StoreURL:           "https://t.me/shop",
			TelegramSupportURL: "https://t.me/support",
			WhatsAppSupportURL: "https://wa.me/100",
			Currency:           "Toman",
		},
	})
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) text(uid int64, text string) chat.Event {
	return chat.Event{UserID: uid, ChatID: uid, Text: text}
}

func (s *ControllerSuite) photo(uid int64, fileID string) chat.Event {
	return chat.Event{UserID: uid, ChatID: uid, Photo: &chat.Attachment{FileID: fileID}}
}

func (s *ControllerSuite) press(uid int64, data string) {
	s.Require().NoError(s.ctrl.Callback(s.ctx, chat.Event{UserID: uid, ChatID: uid}, data, s.out))
}

func (s *ControllerSuite) input(ev chat.Event) {
	s.Require().NoError(s.ctrl.Input(s.ctx, ev, s.out))
}

func (s *ControllerSuite) pending(uid int64) Pending {
	p, ok, err := s.sessions.Get(s.ctx, uid)
	s.Require().NoError(err)
	if !ok {
		return nil
	}
	return p
}

func (s *ControllerSuite) seed(name string, price int64, available bool) int64 {
	id, err := s.catalog.Add(s.ctx, catalog.NewProduct{Name: name, Description: "about " + name, Price: price, ImageURL: "tg:" + name, IsAvailable: available})
	s.Require().NoError(err)
	return id
}

func (s *ControllerSuite) TestStartShowsAdminRowsOnlyToAdmins() {
	s.Require().NoError(s.ctrl.Start(s.ctx, s.text(customerID, "/start"), s.out))
	s.Len(s.out.last().Buttons, 4)
	s.Require().NoError(s.ctrl.Start(s.ctx, s.text(adminID, "/start"), s.out))
	s.Len(s.out.last().Buttons, 6)
	s.Equal(ActionManageUsers, s.out.last().Buttons[5][0].Data)
	s.True(s.users.ids[customerID])
}

func (s *ControllerSuite) TestAdminActionsIgnoredForCustomers() {
	for _, data := range []string{ActionManageProducts, ActionManageUsers, ActionAddProduct, ActionDeleteProduct} {
		s.press(customerID, data)
	}
	s.Empty(s.out.replies)
	s.Nil(s.pending(customerID))
	s.False(s.ctrl.InProgress(s.ctx, customerID))
}

func (s *ControllerSuite) TestUnknownTagIgnored() {
	s.press(customerID, "refund")
	s.Empty(s.out.replies)
}

func (s *ControllerSuite) TestSupportLinks() {
	s.press(customerID, ActionStore)
	s.press(customerID, ActionTelegramSupport)
	s.press(customerID, ActionWhatsAppSupport)

	s.Equal([]string{
		"🔗 Store link: https://t.me/shop",
		"🔗 Telegram support: https://t.me/support",
		textWhatsAppWait,
		"To contact WhatsApp support, please use this link: https://wa.me/100",
	}, s.out.texts())
	s.Equal([]string{textTelegramWait}, s.out.notices)
	s.Equal([]string{"clicked_store", "clicked_telegram_support", "clicked_whatsapp_support"}, s.users.actions)
}

func (s *ControllerSuite) TestProductListButtons() {
	s.press(customerID, ActionProductList)
	s.Equal(textNoProducts, s.out.last().Text)

	hat := s.seed("Hat", 1500, true)
	s.seed("Secret", 10, false)
	s.press(customerID, ActionProductList)
	reply := s.out.last()
	s.Equal(textProductList, reply.Text)
	s.Require().Len(reply.Buttons, 1)
	s.Equal(chat.Button{Text: "Hat - 1500 Toman", Data: "buy_1"}, reply.Buttons[0][0])
	s.Equal(int64(1), hat)
}

func (s *ControllerSuite) TestBuyUnknownProduct() {
	s.press(customerID, "buy_999")
	s.Equal([]string{textNotFound}, s.out.texts())
	s.Empty(s.out.replies[0].Photo)
	s.Empty(s.users.actions)

	s.press(customerID, "buy_x")
	s.Equal(textNotFound, s.out.last().Text)
}

func (s *ControllerSuite) TestBuyShowsCard() {
	id := s.seed("Hat <XL>", 1500, true)
	s.press(customerID, "buy_1")

	card := s.out.last()
	s.Equal("tg:Hat <XL>", card.Photo)
	s.True(card.HTML)
	s.Contains(card.Text, "<b>Hat &lt;XL&gt;</b>")
	s.Contains(card.Text, "1500 Toman")
	s.Equal("https://t.me/support", card.Buttons[0][0].URL)
	s.Equal([]string{"requested_buy_1"}, s.users.actions)
	s.Equal(int64(1), id)
}

func (s *ControllerSuite) TestBuyMediaFailureDegrades() {
	s.seed("Hat", 1500, true)
	s.out.failPhoto = true
	s.press(customerID, "buy_1")
	s.Equal([]string{textSendFailed}, s.out.texts())
}

func (s *ControllerSuite) TestBuyStoreFailureLooksLikeNotFound() {
	s.seed("Hat", 1500, true)
	s.catalog.failRead = true
	s.press(customerID, "buy_1")
	s.Equal([]string{textNotFound}, s.out.texts())
}

func (s *ControllerSuite) TestManageProductsListsInventory() {
	s.seed("Hat", 1500, true)
	s.seed("Cap", 20, false)
	s.press(adminID, ActionManageProducts)

	s.Require().Len(s.out.replies, 2)
	s.Equal(textManage, s.out.replies[0].Text)
	s.Len(s.out.replies[0].Buttons, 3)
	s.Equal("📋 Existing products:\nID: 1 - Hat - 1500 Toman\nID: 2 - Cap - 20 Toman (hidden)", s.out.replies[1].Text)
}

func (s *ControllerSuite) TestManageUsers() {
	s.press(adminID, ActionManageUsers)
	s.Equal(textManageUsers+"\n\n"+textNoUsers, s.out.last().Text)

	s.users.ids[5] = true
	s.users.ids[3] = true
	s.press(adminID, ActionManageUsers)
	s.Equal(textManageUsers+"\n\n- 3\n- 5", s.out.last().Text)
	s.Equal(ActionBackToMain, s.out.last().Buttons[0][0].Data)
}

func (s *ControllerSuite) TestAddProductFlow() {
	s.users.ids[customerID] = true
	s.press(adminID, ActionAddProduct)
	s.Equal(AwaitingImage{}, s.pending(adminID))
	s.True(s.ctrl.InProgress(s.ctx, adminID))

	s.input(s.text(adminID, "hello"))
	s.Equal(textNeedImage, s.out.last().Text)
	s.Equal(AwaitingImage{}, s.pending(adminID))

	s.input(s.photo(adminID, "AgAD"))
	s.Equal(AwaitingTitle{Image: "tg:AgAD"}, s.pending(adminID))

	s.input(s.text(adminID, " a "))
	s.Equal(textTitleShort, s.out.last().Text)
	s.Equal(AwaitingTitle{Image: "tg:AgAD"}, s.pending(adminID))

	s.input(s.text(adminID, "ab"))
	s.Equal(AwaitingDescription{Image: "tg:AgAD", Name: "ab"}, s.pending(adminID))

	s.input(s.text(adminID, "shor"))
	s.Equal(textDescShort, s.out.last().Text)
	s.input(s.text(adminID, "  long enough  "))
	s.Equal(AwaitingPrice{Image: "tg:AgAD", Name: "ab", Description: "long enough"}, s.pending(adminID))

	for _, bad := range []string{"12.5", "-1", "abc", "", "99999999999999999999"} {
		s.input(s.text(adminID, bad))
		s.Equal(textDigitsOnly, s.out.last().Text, bad)
		s.IsType(AwaitingPrice{}, s.pending(adminID))
	}

	s.input(s.text(adminID, "1500"))
	s.Nil(s.pending(adminID))
	s.False(s.ctrl.InProgress(s.ctx, adminID))

	p, err := s.catalog.GetByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Equal(catalog.Product{ID: 1, Name: "ab", Description: "long enough", Price: 1500, ImageURL: "tg:AgAD", IsAvailable: true}, *p)

	s.Equal("✅ Product 1 saved.", s.out.last().Text)
	s.Require().Len(s.announcer.replies, 1)
	announce := s.announcer.replies[0]
	s.Equal("tg:AgAD", announce.Photo)
	s.Equal("🛍 ab\n\n📄 long enough\n💰 Price: 1500 Toman", announce.Text)
	s.Equal("https://t.me/support", announce.Buttons[0][0].URL)
}

func (s *ControllerSuite) TestTitleCountsRunes() {
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, AwaitingTitle{Image: "tg:x"}))
	s.input(s.text(adminID, "é"))
	s.Equal(textTitleShort, s.out.last().Text)
	s.input(s.text(adminID, "éé"))
	s.Equal(AwaitingDescription{Image: "tg:x", Name: "éé"}, s.pending(adminID))
}

func (s *ControllerSuite) TestCaptionFieldsAreCapped() {
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, AwaitingTitle{Image: "tg:x"}))
	s.input(s.text(adminID, strings.Repeat("ک", maxTitleLen+1)))
	s.Equal(textTitleLong, s.out.last().Text)
	s.IsType(AwaitingTitle{}, s.pending(adminID))

	title := strings.Repeat("ک", maxTitleLen)
	s.input(s.text(adminID, title))
	s.input(s.text(adminID, strings.Repeat("a", maxDescriptionLen+1)))
	s.Equal(textDescLong, s.out.last().Text)
	s.IsType(AwaitingDescription{}, s.pending(adminID))

	desc := strings.Repeat("a", maxDescriptionLen)
	s.input(s.text(adminID, desc))
	s.Equal(AwaitingPrice{Image: "tg:x", Name: title, Description: desc}, s.pending(adminID))

	card := s.ctrl.announcement(AwaitingPrice{Name: title, Description: desc}, 9223372036854775807)
	s.LessOrEqual(len([]rune(card.Text)), 1024)
}

func (s *ControllerSuite) TestPriceAcceptsPersianDigits() {
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, AwaitingPrice{Image: "tg:x", Name: "Hat", Description: "Warm hat"}))
	s.input(s.text(adminID, "۱۵۰۰"))
	s.Nil(s.pending(adminID))

	p, err := s.catalog.GetByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Equal(int64(1500), p.Price)
}

func (s *ControllerSuite) TestImageStoreFailureKeepsState() {
	s.media.fail = true
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, AwaitingImage{}))
	s.input(s.photo(adminID, "AgAD"))
	s.Equal(textImageFailed, s.out.last().Text)
	s.Equal(AwaitingImage{}, s.pending(adminID))
}

func (s *ControllerSuite) TestFailedInsertKeepsPriceStage() {
	s.catalog.failAdd = true
	pending := AwaitingPrice{Image: "tg:x", Name: "Hat", Description: "Warm hat"}
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, pending))

	s.input(s.text(adminID, "10"))
	s.Equal(textAddFailed, s.out.last().Text)
	s.Equal(pending, s.pending(adminID))
	s.Empty(s.announcer.replies)

	s.catalog.failAdd = false
	s.input(s.text(adminID, "10"))
	s.Nil(s.pending(adminID))
}

func (s *ControllerSuite) TestAnnouncementFailureIsReported() {
	s.announcer.fail = true
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, AwaitingPrice{Image: "tg:x", Name: "Hat", Description: "Warm hat"}))
	s.input(s.text(adminID, "10"))
	s.Equal(textAnnounceFail, s.out.last().Text)
	s.Nil(s.pending(adminID))
}

func (s *ControllerSuite) TestDeleteFlowRetriesUntilKnownID() {
	id := s.seed("Hat", 1, true)
	s.press(adminID, ActionDeleteProduct)
	s.Equal(AwaitingDeleteID{}, s.pending(adminID))

	s.input(s.text(adminID, "999"))
	s.Equal(textDeleteMissing, s.out.last().Text)
	s.Equal(AwaitingDeleteID{}, s.pending(adminID))

	s.input(s.text(adminID, "abc"))
	s.Equal(textDeleteMissing, s.out.last().Text)
	s.Equal(AwaitingDeleteID{}, s.pending(adminID))

	s.input(s.text(adminID, " 1 "))
	s.Equal("✅ Product with ID 1 deleted.", s.out.last().Text)
	s.Nil(s.pending(adminID))
	p, _ := s.catalog.GetByID(s.ctx, id)
	s.Nil(p)
}

func (s *ControllerSuite) TestUnrecognizedStateIsCleared() {
	s.Require().NoError(s.sessions.Set(s.ctx, adminID, Unrecognized{Raw: "waiting_for_color"}))
	s.input(s.text(adminID, "red"))
	s.Equal(textStartOver, s.out.last().Text)
	s.Nil(s.pending(adminID))
}

func (s *ControllerSuite) TestInputWithoutSession() {
	s.ErrorIs(s.ctrl.Input(s.ctx, s.text(customerID, "hi"), s.out), errNoSession)
	s.Empty(s.out.replies)
}

func (s *ControllerSuite) TestCancel() {
	s.Require().NoError(s.ctrl.Cancel(s.ctx, s.text(adminID, "/cancel"), s.out))
	s.Equal(textNothingCancel, s.out.last().Text)

	s.press(adminID, ActionAddProduct)
	s.Require().NoError(s.ctrl.Cancel(s.ctx, s.text(adminID, "/cancel"), s.out))
	s.Equal(textCancelled, s.out.last().Text)
	s.Nil(s.pending(adminID))
}

func (s *ControllerSuite) TestSearchAndAvailable() {
	s.seed("50% off hat", 5, true)
	s.seed("Cap", 7, false)

	s.Require().NoError(s.ctrl.Search(s.ctx, s.text(customerID, ""), "  ", s.out))
	s.Equal(textSearchUsage, s.out.last().Text)

	s.Require().NoError(s.ctrl.Search(s.ctx, s.text(customerID, ""), "50%", s.out))
	s.Require().Len(s.out.last().Buttons, 1)
	s.Equal("buy_1", s.out.last().Buttons[0][0].Data)

	s.Require().NoError(s.ctrl.Search(s.ctx, s.text(customerID, ""), "hat", s.out))
	s.Len(s.out.last().Buttons, 1)
	s.Require().NoError(s.ctrl.Search(s.ctx, s.text(customerID, ""), "Hat", s.out))
	s.Equal(textNoProducts, s.out.last().Text)

	s.Require().NoError(s.ctrl.Available(s.ctx, s.text(customerID, ""), s.out))
	s.Len(s.out.last().Buttons, 1)
}

func (s *ControllerSuite) TestStatsAndAvailabilityToggle() {
	s.seed("Hat", 5, true)
	s.users.ids[customerID] = true

	s.Require().NoError(s.ctrl.SetAvailability(s.ctx, s.text(adminID, ""), "1", false, s.out))
	s.Equal("✅ Product 1 is now hidden.", s.out.last().Text)
	s.Require().NoError(s.ctrl.SetAvailability(s.ctx, s.text(adminID, ""), "9", true, s.out))
	s.Equal(textDeleteMissing, s.out.last().Text)
	s.Require().NoError(s.ctrl.SetAvailability(s.ctx, s.text(adminID, ""), "x", true, s.out))
	s.Equal(textToggleUsage, s.out.last().Text)

	s.Require().NoError(s.ctrl.Stats(s.ctx, s.text(adminID, ""), s.out))
	s.Equal("📊 Products: 1 (available: 0)\n👤 Users: 1", s.out.last().Text)
}
