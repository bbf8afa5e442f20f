package page

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/ysmood/gson"
)

// popstateBinding is the window function the page calls on popstate.
const popstateBinding = "__smoothiePopstate"

// PopstateListener forwards back/forward navigation in the page to Go.
type PopstateListener struct {
	stop   func() error
	remove func() error
}

// ListenPopstate calls fn with location.hash whenever the page fires a
// popstate event. The listener is installed in the current document and
// in every document loaded afterwards.
func ListenPopstate(ctx context.Context, p *Page, fn func(hash string)) (*PopstateListener, error) {
	stop, err := p.page.Expose(popstateBinding, func(payload gson.JSON) (interface{}, error) {
		hash := payload.Get("hash").Str()
		log.Debug().Str("hash", hash).Msg("Popstate received")
		fn(hash)
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expose popstate binding: %w", err)
	}

	install := popstateInstallJS(popstateBinding)

	remove, err := p.page.EvalOnNewDocument("(" + install + ")()")
	if err != nil {
		_ = stop()
		return nil, fmt.Errorf("failed to register popstate listener: %w", err)
	}

	if _, err := p.eval(ctx, "install popstate listener", install); err != nil {
		_ = remove()
		_ = stop()
		return nil, err
	}

	return &PopstateListener{stop: stop, remove: remove}, nil
}

// Close detaches the listener from future documents and unbinds the
// Go callback.
func (l *PopstateListener) Close() error {
	removeErr := l.remove()
	if err := l.stop(); err != nil {
		return err
	}
	return removeErr
}

// popstateInstallJS returns a function that installs the popstate listener
// once per document.
func popstateInstallJS(binding string) string {
	return fmt.Sprintf(`() => {
		if (window.%[1]sInstalled) return;
		window.%[1]sInstalled = true;
		window.addEventListener('popstate', () => {
			const fn = window[%[1]q];
			if (fn) fn({ hash: window.location.hash });
		});
	}`, binding)
}
