package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/favorites"
	"chuckle-chow/internal/core/feedback"
	"chuckle-chow/internal/core/fetch"
	"chuckle-chow/internal/core/prefs"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/core/share"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

const welcome = `Howdy, partner! Welcome to Chuckle & Chow.
Pick some ingredients, hit "cook", and we'll rustle up somethin' ridiculous.
Type "help" for commands, "dismiss" to hide this greeting.`

const help = `Commands:
  list                         show ingredients by category
  pick <category> <name>       choose one ingredient for a category
  unpick <category>            clear one category
  picks                        show current picks
  cook                         generate from current picks
  random                       generate ignoring picks
  surprise                     random pick per category, then generate
  retry                        repeat the last request
  show                         show the current recipe
  clear                        reset picks and recipe
  save                         save the current recipe to favorites
  favs [query]                 list favorites, optionally filtered
  fav <id>                     select a favorite and show it
  fav-rate <id> <1-5>          rate a favorite
  fav-rm <id>                  remove a favorite
  fav-clear                    remove all favorites
  share [platform]             facebook, x, whatsapp, email or native
  copy                         copy share text to the clipboard
  rate <1-5> [comment]         rate the recipe with the service
  comments                     load comments for the recipe
  theme                        toggle light/dark
  dismiss                      hide the welcome greeting
  quit`

// surpriseWait 等待防抖請求的上限
const surpriseWait = 2 * time.Minute

type app struct {
	in  *bufio.Scanner
	out io.Writer

	sel    *catalog.Selection
	ctrl   *fetch.Controller
	favs   *favorites.Store
	sharer *share.Adapter
	copier *share.Copier
	panel  *feedback.Panel
	prefs  *prefs.Prefs

	loaded chan struct{}
}

func (a *app) run(ctx context.Context) {
	if !a.prefs.WelcomeDismissed() {
		fmt.Fprintln(a.out, welcome)
	}
	for {
		fmt.Fprintf(a.out, "chow(%s)> ", a.prefs.Theme())
		if !a.in.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(a.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err := a.dispatch(ctx, fields[0], fields[1:]); err != nil {
			common.LogDebug("command failed", zap.String("command", fields[0]), zap.Error(err))
		}
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, help)
	case "list":
		a.list()
	case "pick":
		if len(args) < 2 {
			return a.usage("pick <category> <name>")
		}
		cat, ok := catalog.ParseCategory(args[0])
		if !ok {
			fmt.Fprintf(a.out, "No such category %q\n", args[0])
			return nil
		}
		if err := a.sel.Set(cat, strings.Join(args[1:], " ")); err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
		a.picks()
	case "unpick":
		if len(args) != 1 {
			return a.usage("unpick <category>")
		}
		if cat, ok := catalog.ParseCategory(args[0]); ok {
			a.sel.Unset(cat)
		}
		a.picks()
	case "picks":
		a.picks()
	case "cook":
		return a.fetch(ctx, false)
	case "random":
		return a.fetch(ctx, true)
	case "surprise":
		a.drain()
		a.ctrl.Surprise(ctx)
		a.picks()
		a.wait(ctx)
	case "retry":
		if !a.ctrl.State().CanRetry() {
			fmt.Fprintln(a.out, "Nothing to retry.")
			return nil
		}
		a.drain()
		return a.ctrl.Retry(ctx)
	case "show":
		a.show(a.ctrl.State().Recipe)
	case "clear":
		a.ctrl.Clear()
		a.panel.Reset()
		fmt.Fprintln(a.out, "All cleared.")
	case "save":
		r, ok := a.current()
		if !ok {
			return nil
		}
		_, err := a.favs.Save(ctx, r)
		return err
	case "favs":
		list := a.favs.List()
		if len(args) > 0 {
			list = a.favs.Search(strings.Join(args, " "))
		}
		for _, f := range list {
			fmt.Fprintf(a.out, "%d  %s  %s\n", f.ID, stars(f.Rating), f.Title)
		}
	case "fav":
		id, err := a.id(args)
		if err != nil {
			return err
		}
		if err := a.favs.Select(id); err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
		if f, ok := a.favs.Selected(); ok {
			a.show(&f.Recipe)
		}
	case "fav-rate":
		id, err := a.id(args)
		if err != nil || len(args) < 2 {
			return a.usage("fav-rate <id> <1-5>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return a.usage("fav-rate <id> <1-5>")
		}
		return a.favs.Rate(ctx, id, n)
	case "fav-rm":
		id, err := a.id(args)
		if err != nil {
			return err
		}
		return a.favs.Remove(ctx, id, a)
	case "fav-clear":
		return a.favs.Clear(ctx, a)
	case "share":
		r, ok := a.current()
		if !ok {
			return nil
		}
		p, err := share.ParsePlatform(strings.Join(args, " "))
		if err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
		return a.sharer.Share(ctx, r, p)
	case "copy":
		r, ok := a.current()
		if !ok {
			return nil
		}
		if err := a.copier.Copy(ctx, r); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Copied!")
	case "rate":
		r, ok := a.current()
		if !ok {
			return nil
		}
		if len(args) < 1 {
			return a.usage("rate <1-5> [comment]")
		}
		n, _ := strconv.Atoi(args[0])
		err := a.panel.Rate(ctx, r.Title, n, strings.Join(args[1:], " "))
		a.feedback()
		return err
	case "comments":
		r, ok := a.current()
		if !ok {
			return nil
		}
		_, err := a.panel.LoadComments(ctx, r.Title)
		a.feedback()
		return err
	case "theme":
		theme, err := a.prefs.ToggleTheme(ctx)
		fmt.Fprintf(a.out, "Theme: %s\n", theme)
		return err
	case "dismiss":
		return a.prefs.DismissWelcome(ctx)
	default:
		fmt.Fprintf(a.out, "Unknown command %q, try \"help\"\n", cmd)
	}
	return nil
}

// Confirm 從同一個輸入讀 y/n
func (a *app) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	if !a.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(a.in.Text()))
	return answer == "y" || answer == "yes"
}

// onState 訂閱控制器，請求結束時印出結果
func (a *app) onState(s fetch.State) {
	if s.IsLoading {
		fmt.Fprintln(a.out, "Cookin' up somethin' wild...")
		return
	}
	if s.Recipe == nil && s.Error == "" {
		return
	}
	if s.Error != "" {
		fmt.Fprintf(a.out, "Error: %s\n", s.Error)
		if s.CanRetry() {
			fmt.Fprintln(a.out, `Type "retry" to try again.`)
		}
	}
	if s.Recipe != nil {
		a.show(s.Recipe)
	}
	select {
	case a.loaded <- struct{}{}:
	default:
	}
}

func (a *app) fetch(ctx context.Context, random bool) error {
	a.drain()
	a.panel.Reset()
	return a.ctrl.FetchRecipe(ctx, random)
}

// wait 等待防抖請求完成
func (a *app) wait(ctx context.Context) {
	select {
	case <-a.loaded:
	case <-ctx.Done():
	case <-time.After(surpriseWait):
		fmt.Fprintln(a.out, "Still waiting on the kitchen, check back with \"show\".")
	}
}

func (a *app) drain() {
	select {
	case <-a.loaded:
	default:
	}
}

func (a *app) current() (recipe.Recipe, bool) {
	s := a.ctrl.State()
	if s.Recipe == nil || s.Recipe.IsPlaceholder() {
		fmt.Fprintln(a.out, "Cook somethin' first!")
		return recipe.Recipe{}, false
	}
	return *s.Recipe, true
}

func (a *app) list() {
	c := a.sel.Catalog()
	for _, cat := range catalog.Categories {
		names := make([]string, 0)
		for _, it := range c.Items(cat) {
			names = append(names, it.Emoji+" "+it.Name)
		}
		fmt.Fprintf(a.out, "%-10s %s\n", cat.Label()+":", strings.Join(names, ", "))
	}
}

func (a *app) picks() {
	snap := a.sel.Snapshot()
	if len(snap) == 0 {
		fmt.Fprintln(a.out, "No picks yet.")
		return
	}
	for _, cat := range catalog.Categories {
		if name, ok := snap[cat]; ok {
			fmt.Fprintf(a.out, "  %s: %s\n", cat.Label(), name)
		}
	}
}

func (a *app) show(r *recipe.Recipe) {
	if r == nil {
		fmt.Fprintln(a.out, "No recipe yet.")
		return
	}
	fmt.Fprintf(a.out, "\n== %s ==\n", r.Title)
	if lines := recipe.IngredientLines(r.Ingredients); len(lines) > 0 {
		fmt.Fprintln(a.out, "Ingredients:")
		for _, l := range lines {
			fmt.Fprintf(a.out, "  - %s\n", l)
		}
	}
	if steps := r.StepTexts(); len(steps) > 0 {
		fmt.Fprintln(a.out, "Steps:")
		for i, s := range steps {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, s)
		}
	}
	if !r.IsPlaceholder() {
		fmt.Fprintf(a.out, "Nutrition: %s\n", recipe.NutritionSummary(r.Nutrition))
	}
	for _, tip := range r.Tips {
		fmt.Fprintf(a.out, "Tip: %s\n", tip)
	}
	fmt.Fprintln(a.out)
}

func (a *app) feedback() {
	s := a.panel.State()
	if s.Error != "" {
		fmt.Fprintf(a.out, "Error: %s\n", s.Error)
		return
	}
	if len(s.Comments) == 0 {
		fmt.Fprintln(a.out, feedback.MsgNoComments)
		return
	}
	for _, c := range s.Comments {
		fmt.Fprintf(a.out, "  %s (%s)\n", c.Comment, c.CreatedAt)
	}
}

func (a *app) id(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, a.usage("<id> required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, a.usage("id must be a number")
	}
	return id, nil
}

func (a *app) usage(msg string) error {
	fmt.Fprintf(a.out, "Usage: %s\n", msg)
	return common.NewValidationError(msg)
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
