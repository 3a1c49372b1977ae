package browser

// stealthScript runs before every document loads and masks the usual
// headless-automation tells.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'vendor', { get: () => 'Google Inc.' });
Object.defineProperty(navigator, 'plugins', {
	get: () => {
		const plugin = {
			0: { type: 'application/x-google-chrome-pdf', suffixes: 'pdf', description: 'Portable Document Format' },
			description: 'Portable Document Format',
			filename: 'internal-pdf-viewer',
			length: 1,
			name: 'Chrome PDF Plugin'
		};
		return [plugin, plugin, plugin];
	},
});
if (!window.chrome) { window.chrome = {}; }
window.chrome.runtime = { connect: function() {}, sendMessage: function() {} };
`

// consentScript clicks through Google's cookie consent dialog when present.
const consentScript = `
(function() {
	var labels = ['accept all', 'i agree', 'agree', 'reject all'];
	var buttons = document.querySelectorAll('button');
	for (var i = 0; i < buttons.length; i++) {
		var text = (buttons[i].innerText || '').trim().toLowerCase();
		var aria = (buttons[i].getAttribute('aria-label') || '').toLowerCase();
		for (var j = 0; j < labels.length; j++) {
			if (text === labels[j] || aria.indexOf(labels[j]) !== -1) {
				buttons[i].click();
				return true;
			}
		}
	}
	return false;
})()
`
