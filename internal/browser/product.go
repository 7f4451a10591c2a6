package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/cardshed/storesync/internal/page"
)

// OpenProduct navigates to the listing-management view for id and waits for
// the variant table to render.
func (s *Session) OpenProduct(ctx context.Context, id string) error {
	url := s.cfg.BaseURL + "/admin/product/manage/" + id
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("table tbody tr", chromedp.ByQuery),
	)
	return eris.Wrapf(err, "browser: open product %s", id)
}

// productNameJS tries the page's name sources in reliability order: the
// Knockout binding, the live-prices link title, the page heading, and last
// the tab title.
const productNameJS = `(() => {
	const span = document.querySelector("span[data-bind='text: productName']");
	if (span && span.innerText.trim()) return span.innerText.trim();

	const link = document.querySelector("a.blue-button-sm");
	if (link) {
		const title = link.getAttribute("title") || "";
		const name = title.replace("View all live prices for ", "").replace(" in a new tab!", "").trim();
		if (name) return name;
	}

	const h1 = document.querySelector("h1");
	if (h1) {
		const text = h1.innerText.trim();
		if (text && !text.includes("Seller Portal")) return text;
	}

	const title = document.title;
	if (title.includes("-")) return title.split("-")[1].trim();
	if (!title.includes("Seller Portal")) return title.trim();
	return "";
})()`

func (s *Session) ProductName(ctx context.Context) (string, error) {
	var name string
	if err := s.eval(ctx, productNameJS, &name); err != nil {
		return "", eris.Wrap(err, "browser: read product name")
	}
	if name == "" {
		return "", page.ErrNotPresent
	}
	return name, nil
}

const productSetJS = `(() => {
	const labels = Array.from(document.querySelectorAll(".pInfo label"));
	const label = labels.find(l => l.innerText.includes("Set Name"));
	if (!label || !label.parentElement) return "";
	return label.parentElement.innerText.replace("Set Name", "").trim();
})()`

func (s *Session) ProductSet(ctx context.Context) (string, error) {
	var set string
	if err := s.eval(ctx, productSetJS, &set); err != nil {
		return "", eris.Wrap(err, "browser: read set name")
	}
	if set == "" {
		return "", page.ErrNotPresent
	}
	return set, nil
}

const productSlugJS = `(() => {
	const link = document.querySelector("a.blue-button-sm");
	if (!link) return "";
	const href = link.getAttribute("href") || "";
	const m = href.match(/\/product\/\d+\/([^/?#]+)/);
	return m ? m[1] : "";
})()`

// categoryBySlug maps the product-link slug prefix to the display category.
var categoryBySlug = []struct{ prefix, category string }{
	{"magic", "Magic: The Gathering"},
	{"pokemon", "Pokemon"},
	{"yugioh", "Yu-Gi-Oh!"},
	{"lorcana", "Lorcana"},
	{"star-wars", "Star Wars"},
}

func (s *Session) ProductCategory(ctx context.Context) (string, error) {
	var slug string
	if err := s.eval(ctx, productSlugJS, &slug); err != nil {
		return "", eris.Wrap(err, "browser: read product link")
	}
	cat := categoryFromSlug(slug)
	if cat == "" {
		return "", page.ErrNotPresent
	}
	return cat, nil
}

// categoryFromSlug resolves a known game prefix, or title-cases the slug's
// first segment for games the table does not know. Slugs with no leading
// segment yield "".
func categoryFromSlug(slug string) string {
	for _, m := range categoryBySlug {
		if strings.HasPrefix(slug, m.prefix) {
			return m.category
		}
	}
	head, _, _ := strings.Cut(slug, "-")
	if head == "" {
		return ""
	}
	return strings.ToUpper(head[:1]) + head[1:]
}

// rowsJS snapshots every variant row. The quantity lives in the row's last
// text input and the seller price in the Knockout newPrice binding; the
// market-match control is the third Match button when the row has a full
// set of them.
const rowsJS = `(() => {
	const rows = Array.from(document.querySelectorAll("table tbody tr"));
	return rows.map((row, i) => {
		const cells = row.querySelectorAll("td");
		const inputs = row.querySelectorAll("input[type='text']");
		const price = row.querySelector("input[data-bind*='textInput: newPrice']");
		return {
			index: i,
			label: cells.length ? cells[0].innerText.trim() : "",
			quantity: inputs.length ? inputs[inputs.length - 1].value : "",
			price: price ? price.value : "",
			marketPrice: cells.length > 3 ? cells[3].innerText.trim() : "",
			hasMatch: row.querySelectorAll("input[value='Match']").length >= 3,
		};
	});
})()`

func (s *Session) Rows(ctx context.Context) ([]page.Row, error) {
	var rows []page.Row
	if err := s.eval(ctx, rowsJS, &rows); err != nil {
		return nil, eris.Wrap(err, "browser: read variant rows")
	}
	return rows, nil
}

// SetQuantity writes qty into the row's quantity input and fires the input
// events the page's bindings listen for.
func (s *Session) SetQuantity(ctx context.Context, index int, qty string) error {
	js := fmt.Sprintf(`(() => {
		const row = document.querySelectorAll("table tbody tr")[%d];
		if (!row) return false;
		const inputs = row.querySelectorAll("input[type='text']");
		if (!inputs.length) return false;
		const input = inputs[inputs.length - 1];
		input.value = %q;
		input.dispatchEvent(new Event("input", {bubbles: true}));
		input.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	})()`, index, qty)

	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return eris.Wrapf(err, "browser: set quantity row %d", index)
	}
	if !ok {
		return page.ErrNotPresent
	}
	return nil
}

// MatchMarketPrice clicks the row's market-price Match button.
func (s *Session) MatchMarketPrice(ctx context.Context, index int) error {
	js := fmt.Sprintf(`(() => {
		const row = document.querySelectorAll("table tbody tr")[%d];
		if (!row) return false;
		const matches = row.querySelectorAll("input[value='Match']");
		if (matches.length < 3) return false;
		matches[2].click();
		return true;
	})()`, index)

	var ok bool
	if err := s.eval(ctx, js, &ok); err != nil {
		return eris.Wrapf(err, "browser: match market price row %d", index)
	}
	if !ok {
		return page.ErrNotPresent
	}
	return nil
}

// PriceValue re-reads the row's price input after a match click.
func (s *Session) PriceValue(ctx context.Context, index int) (string, error) {
	js := fmt.Sprintf(`(() => {
		const row = document.querySelectorAll("table tbody tr")[%d];
		if (!row) return null;
		const price = row.querySelector("input[data-bind*='textInput: newPrice']");
		return price ? price.value : null;
	})()`, index)

	var price *string
	if err := s.eval(ctx, js, &price); err != nil {
		return "", eris.Wrapf(err, "browser: read price row %d", index)
	}
	if price == nil {
		return "", page.ErrNotPresent
	}
	return *price, nil
}

const saveJS = `(() => {
	const btns = Array.from(document.querySelectorAll("button"));
	const save = btns.find(b => b.innerText.trim() === "Save");
	if (!save) return false;
	save.click();
	return true;
})()`

// Save clicks the page's Save button. The page gives no completion event;
// the engine owns the settle delay.
func (s *Session) Save(ctx context.Context) error {
	var ok bool
	if err := s.eval(ctx, saveJS, &ok); err != nil {
		return eris.Wrap(err, "browser: save")
	}
	if !ok {
		return page.ErrNotPresent
	}
	return nil
}
