package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"smokyloft/internal/booking"
	"smokyloft/internal/cart"
	"smokyloft/internal/config"
	"smokyloft/internal/events"
	"smokyloft/internal/export"
	"smokyloft/internal/hall"
	"smokyloft/internal/handoff"
	"smokyloft/internal/models"
	"smokyloft/internal/notify"
)

// console is the interactive front of the booking core: a line-based stand-in
// for the single-page UI, driving the same wizard and store.
type console struct {
	cfg     *config.Config
	hall    *config.HallConfig
	store   *booking.Store
	cart    *cart.Cart
	wizard  *booking.Wizard
	bus     *events.EventBus
	toaster *notify.Toaster
	logger  *zerolog.Logger

	lines chan string
	out   *os.File
}

func newConsole(cfg *config.Config, hallCfg *config.HallConfig, store *booking.Store,
	basket *cart.Cart, wizard *booking.Wizard, bus *events.EventBus,
	toaster *notify.Toaster, logger *zerolog.Logger) *console {

	c := &console{
		cfg:     cfg,
		hall:    hallCfg,
		store:   store,
		cart:    basket,
		wizard:  wizard,
		bus:     bus,
		toaster: toaster,
		logger:  logger,
		lines:   make(chan string),
		out:     os.Stdout,
	}

	// A single reader goroutine owns stdin; prompts consume the same stream.
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
	}()

	bus.Subscribe(events.TypeBookingConfirmed, func(events.Event) {
		c.toast("Заявка сформирована! Переход в Telegram...")
	})
	bus.Subscribe(events.TypeReservationCancelled, func(events.Event) {
		c.toast("Бронь отменена")
	})
	bus.Subscribe(events.TypeCartUpdated, func(e events.Event) {
		if item, ok := e.Payload.(models.CartItem); ok {
			c.toast(fmt.Sprintf("Добавлено: %s", item.Title))
		}
	})
	return c
}

// Run reads commands until EOF or ctx cancellation.
func (c *console) Run(ctx context.Context) {
	c.printf("%s — бронирование столов. Введите help для списка команд.\n", c.cfg.Venue.Name)

	for {
		c.printf("> ")
		select {
		case <-ctx.Done():
			c.printf("\n")
			return
		case line, ok := <-c.lines:
			if !ok {
				return
			}
			if !c.handle(ctx, strings.Fields(strings.TrimSpace(line))) {
				return
			}
		}
	}
}

// handle dispatches one command; returns false to quit.
func (c *console) handle(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return true
	}

	switch args[0] {
	case "help":
		c.printHelp()
	case "menu":
		c.printMenu()
	case "hall":
		c.cmdHall(args[1:])
	case "cart":
		c.cmdCart(args[1:])
	case "book":
		c.cmdBook(ctx)
	case "list":
		c.printReservations(c.store.List())
	case "active":
		c.printReservations(c.store.ActiveReservations())
	case "my":
		c.cmdMy(args[1:])
	case "cancel":
		c.cmdCancel(args[1:])
	case "export":
		c.cmdExport(args[1:])
	case "cleanup":
		dropped, err := c.store.CleanupExpired()
		if err != nil {
			c.printf("ошибка: %v\n", err)
			break
		}
		c.printf("удалено прошедших броней: %d\n", dropped)
	case "purge":
		c.cmdPurge()
	case "quit", "exit":
		return false
	default:
		c.printf("неизвестная команда %q, введите help\n", args[0])
	}
	return true
}

func (c *console) printHelp() {
	c.printf(`Команды:
  menu                меню и услуги
  cart add <id>       добавить услугу в корзину
  cart show           показать корзину
  cart clear          очистить корзину
  hall <дата> [время] схема зала (дата: %s)
  book                пошаговое бронирование стола
  list                все брони
  active              активные брони
  my <телефон>        мои брони
  cancel <id>         отменить бронь
  export <файл.xlsx>  выгрузка активных броней
  cleanup             удалить прошедшие брони
  purge               удалить все брони
  quit                выход
`, strings.Join(c.cfg.Booking.Dates, "/"))
}

func (c *console) printMenu() {
	c.printf("Меню & Услуги:\n")
	for _, s := range c.cfg.Services {
		c.printf("  [%d] %s — %d %s\n      %s\n", s.ID, s.Title, s.Price, c.cfg.Venue.Currency, s.Description)
	}
}

func (c *console) cmdHall(args []string) {
	date := c.cfg.Booking.Dates[0]
	timeSlot := ""
	if len(args) > 0 {
		date = args[0]
	}
	if len(args) > 1 {
		timeSlot = args[1]
	}
	snapshot := hall.Snapshot(c.hall, c.store, date, timeSlot, 0)
	c.printf("%s", hall.RenderText(snapshot, date, timeSlot))
}

func (c *console) cmdCart(args []string) {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			c.printf("cart add <id услуги>\n")
			return
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			c.printf("некорректный id: %q\n", args[1])
			return
		}
		svc := c.cfg.ServiceByID(id)
		if svc == nil {
			c.printf("услуга %d не найдена, введите menu\n", id)
			return
		}
		item := models.CartItem{ID: svc.ID, Title: svc.Title, Price: svc.Price}
		if err := c.cart.Add(item); err != nil {
			c.printf("ошибка: %v\n", err)
			return
		}
		c.bus.Publish(events.TypeCartUpdated, item)
	case "show":
		items := c.cart.Items()
		if len(items) == 0 {
			c.printf("корзина пуста\n")
			return
		}
		for _, item := range items {
			c.printf("  - %s (%d %s)\n", item.Title, item.Price, c.cfg.Venue.Currency)
		}
		c.printf("  Итого: %d %s\n", c.cart.Total(), c.cfg.Venue.Currency)
	case "clear":
		if err := c.cart.Clear(); err != nil {
			c.printf("ошибка: %v\n", err)
			return
		}
		c.printf("корзина очищена\n")
	default:
		c.printf("cart add|show|clear\n")
	}
}

// cmdBook walks the wizard through all three steps.
func (c *console) cmdBook(ctx context.Context) {
	c.wizard.Open()
	defer func() {
		// Abandoning mid-flow leaves nothing behind: the next Open resets.
		if c.wizard.State() != booking.StateClosed {
			c.wizard.Close()
		}
	}()

	// Step 1: schedule
	for {
		date := c.prompt(fmt.Sprintf("Выберите день (%s): ", strings.Join(c.cfg.Booking.Dates, "/")))
		if date == "" {
			return
		}
		if err := c.wizard.SelectDate(date); err != nil {
			c.printf("  %v\n", err)
			continue
		}
		break
	}
	for {
		timeSlot := c.prompt(fmt.Sprintf("Выберите время (%s): ", strings.Join(c.cfg.Booking.Times, " ")))
		if timeSlot == "" {
			return
		}
		if err := c.wizard.SelectTime(timeSlot); err != nil {
			c.printf("  %v\n", err)
			continue
		}
		break
	}
	if err := c.wizard.Next(); err != nil {
		c.printf("  %v\n", err)
		return
	}

	// Step 2: table
	draft := c.wizard.Draft()
	snapshot := hall.Snapshot(c.hall, c.store, draft.Date, draft.Time, 0)
	c.printf("%s", hall.RenderText(snapshot, draft.Date, draft.Time))
	for {
		raw := c.prompt("Номер стола: ")
		if raw == "" {
			return
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.printf("  некорректный номер: %q\n", raw)
			continue
		}
		info, err := c.wizard.SelectTable(id)
		if err != nil {
			c.printf("  %v\n", err)
			continue
		}
		if info.Taken {
			// Clicking a taken table shows its booking instead of selecting.
			c.printf("  %s занят", info.Table.Label)
			if info.Booking != nil {
				c.printf(" — %s, %s", info.Booking.Name, info.Booking.Time)
			}
			c.printf("\n")
			continue
		}
		c.printf("  Выбран %s (%s, до %d чел.)\n", info.Table.Label, info.Table.TypeName(), info.Table.Seats)
		break
	}
	if err := c.wizard.Next(); err != nil {
		c.printf("  %v\n", err)
		return
	}

	// Step 3: contact
	name := c.prompt("Ваше имя: ")
	if name == "" {
		return
	}
	if err := c.wizard.SetName(name); err != nil {
		c.printf("  %v\n", err)
		return
	}
	rawPhone := c.prompt("Телефон: ")
	if rawPhone == "" {
		return
	}
	masked, err := c.wizard.InputPhone(rawPhone)
	if err != nil {
		c.printf("  %v\n", err)
		return
	}
	c.printf("  Телефон: %s\n", masked)

	reservation, link, err := c.wizard.Confirm(ctx)
	if err != nil {
		c.printf("  %v\n", err)
		return
	}
	c.printf("✅ Бронь %s: %s %s, стол %d\n", reservation.ID, reservation.Date, reservation.Time, reservation.TableID)
	c.printf("Ссылка для отправки: %s\n", link)
}

func (c *console) cmdMy(args []string) {
	if len(args) == 0 {
		c.printf("my <телефон>\n")
		return
	}
	c.printReservations(c.store.ForPhone(strings.Join(args, " ")))
}

func (c *console) cmdCancel(args []string) {
	if len(args) == 0 {
		c.printf("cancel <id брони>\n")
		return
	}
	id := args[0]
	r := c.store.FindByID(id)
	if r == nil {
		c.printf("бронь %s не найдена\n", id)
		return
	}
	// Double confirmation is a UI courtesy, not concurrency control.
	answer := c.prompt(fmt.Sprintf("Отменить бронь %s (%s %s, стол %d)? y/n: ", r.ID, r.Date, r.Time, r.TableID))
	if answer != "y" && answer != "yes" {
		c.printf("отмена не подтверждена\n")
		return
	}
	removed, err := c.store.Cancel(id)
	if err != nil {
		c.printf("ошибка: %v\n", err)
		return
	}
	if !removed {
		c.printf("бронь %s не найдена\n", id)
		return
	}
	c.bus.Publish(events.TypeReservationCancelled, *r)
}

func (c *console) cmdExport(args []string) {
	path := "reservations.xlsx"
	if len(args) > 0 {
		path = args[0]
	}
	report := export.NewExcelReport()
	defer report.Close()

	reservations := c.store.ActiveReservations()
	if err := report.Write(reservations); err != nil {
		c.printf("ошибка выгрузки: %v\n", err)
		return
	}
	if err := report.SaveToFile(path); err != nil {
		c.printf("ошибка записи: %v\n", err)
		return
	}
	c.logger.Info().Str("path", path).Int("count", len(reservations)).Msg("report exported")
	c.printf("выгружено в %s\n", path)
}

func (c *console) cmdPurge() {
	answer := c.prompt("Удалить ВСЕ брони? y/n: ")
	if answer != "y" && answer != "yes" {
		return
	}
	if err := c.store.Purge(); err != nil {
		c.printf("ошибка: %v\n", err)
		return
	}
	c.printf("хранилище очищено\n")
}

func (c *console) printReservations(reservations []models.Reservation) {
	if len(reservations) == 0 {
		c.printf("броней нет\n")
		return
	}
	for _, r := range reservations {
		label := fmt.Sprintf("стол %d", r.TableID)
		if t := c.hall.TableByID(r.TableID); t != nil {
			label = t.Label
		}
		c.printf("  %s  %-12s %-6s %-10s %s %s\n", r.ID, r.Date, r.Time, label, r.Name, r.Phone)
	}
}

func (c *console) prompt(text string) string {
	c.printf("%s", text)
	line, ok := <-c.lines
	if !ok {
		return ""
	}
	return strings.TrimSpace(line)
}

func (c *console) toast(message string) {
	c.toaster.Show(message, notify.KindSuccess)
	c.printf("🔔 %s\n", message)
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// browserOpener opens the deep link in the system browser; when that fails
// the link is still printed by the book flow, so the failure is only logged.
func browserOpener(logger *zerolog.Logger) handoff.Opener {
	return handoff.OpenerFunc(func(url string) error {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Start(); err != nil {
			logger.Debug().Err(err).Msg("no system browser opener")
			return err
		}
		return nil
	})
}
