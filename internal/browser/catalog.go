package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/cardshed/storesync/internal/model"
)

var manageLinkPattern = regexp.MustCompile(`manage/(\d+)`)

// OpenCatalog navigates to the catalog search page.
func (s *Session) OpenCatalog(ctx context.Context) error {
	err := s.run(ctx, chromedp.Navigate(s.cfg.CatalogURL))
	return eris.Wrap(err, "browser: open catalog")
}

const applyFilterJS = `(() => {
	const labels = Array.from(document.querySelectorAll("label"));
	const label = labels.find(l => l.innerText.includes("My Inventory Only"));
	if (!label) return false;

	let box = null;
	const forId = label.getAttribute("for");
	if (forId) box = document.getElementById(forId);
	if (!box && label.parentElement) box = label.parentElement.querySelector("input");
	if (!box) return false;

	if (!box.checked) {
		box.click();
	}

	const buttons = Array.from(document.querySelectorAll("button, input[type='button'], input[type='submit']"));
	const search = buttons.find(b => (b.innerText || b.value || "").trim() === "Search");
	if (!search) return false;
	search.click();
	return true;
})()`

// ApplyInventoryFilter checks "My Inventory Only" and submits the search,
// then waits for the result rows.
func (s *Session) ApplyInventoryFilter(ctx context.Context) error {
	var ok bool
	if err := s.eval(ctx, applyFilterJS, &ok); err != nil {
		return eris.Wrap(err, "browser: apply inventory filter")
	}
	if !ok {
		return eris.New("browser: inventory filter controls not found")
	}
	return eris.Wrap(
		s.run(ctx, chromedp.WaitVisible("table tbody tr", chromedp.ByQuery)),
		"browser: wait for filtered results",
	)
}

// catalogEntriesJS reads the result table whose header mentions Product Name.
// Column order per the live page: product line, view link, name, set,
// rarity, number. The id comes from the row's manage link; rows without one
// are not products.
const catalogEntriesJS = `(() => {
	const tables = Array.from(document.querySelectorAll("table"));
	const productTable = tables.find(t => t.innerText.includes("Product Name"));
	if (!productTable) return [];

	const rows = Array.from(productTable.querySelectorAll("tbody tr"));
	return rows.map(row => {
		const cells = Array.from(row.querySelectorAll("td"));
		if (cells.length < 5) return null;

		let pid = "";
		const link = row.querySelector("a[href*='/admin/product/manage/']");
		if (link) {
			const m = link.getAttribute("href").match(/manage\/(\d+)/);
			if (m) pid = m[1];
		}
		if (!pid) return null;

		return {
			id: pid,
			category: cells[0] ? cells[0].innerText.trim() : "",
			name: cells[2] ? cells[2].innerText.trim() : "",
			set: cells[3] ? cells[3].innerText.trim() : "",
			rarity: cells[4] ? cells[4].innerText.trim() : "",
			number: cells[5] ? cells[5].innerText.trim() : "",
		};
	}).filter(e => e !== null);
})()`

// CatalogEntries reads all product rows of the current catalog page.
func (s *Session) CatalogEntries(ctx context.Context) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	if err := s.eval(ctx, catalogEntriesJS, &entries); err != nil {
		return nil, eris.Wrap(err, "browser: read catalog entries")
	}
	return entries, nil
}

const nextPageJS = `(() => {
	const links = Array.from(document.querySelectorAll("a"));
	const next = links.find(a => a.innerText.trim() === "Next");
	if (!next || (next.getAttribute("class") || "").includes("disabled")) return false;
	next.click();
	return true;
})()`

// NextCatalogPage clicks the Next pagination link when it is present and
// enabled. The page swaps row content in place, so a short settle stands in
// for a load event.
func (s *Session) NextCatalogPage(ctx context.Context) (bool, error) {
	var ok bool
	if err := s.eval(ctx, nextPageJS, &ok); err != nil {
		return false, eris.Wrap(err, "browser: next catalog page")
	}
	if !ok {
		return false, nil
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(time.Second):
	}
	return true, nil
}

// SearchCatalog runs a free-text name query and extracts the product id from
// the first result's manage link.
func (s *Session) SearchCatalog(ctx context.Context, name string) (string, error) {
	if err := s.OpenCatalog(ctx); err != nil {
		return "", err
	}

	fillJS := fmt.Sprintf(`(() => {
		const box = document.querySelector("input#ProductName");
		const btn = document.querySelector("input#searchButton");
		if (!box || !btn) return false;
		box.value = %q;
		box.dispatchEvent(new Event("input", {bubbles: true}));
		btn.click();
		return true;
	})()`, name)

	var ok bool
	if err := s.eval(ctx, fillJS, &ok); err != nil {
		return "", eris.Wrapf(err, "browser: search catalog for %q", name)
	}
	if !ok {
		return "", eris.New("browser: catalog search controls not found")
	}

	var href string
	err := s.run(ctx,
		chromedp.WaitVisible("table.sTable tbody tr td a", chromedp.ByQuery),
		chromedp.AttributeValue("table.sTable tbody tr td a", "href", &href, nil, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrapf(err, "browser: read search results for %q", name)
	}

	m := manageLinkPattern.FindStringSubmatch(href)
	if m == nil {
		return "", eris.Errorf("browser: no product link in first result for %q", name)
	}
	return m[1], nil
}
