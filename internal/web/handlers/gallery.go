package handlers

import (
	"html/template"
	"net/http"

	"photo-gallery/internal/domain/photo"
)

type galleryPage struct {
	CSRFEnabled bool
	CSRFToken   string
	CSRFHeader  string
	Sort        photo.SortKey
	Photos      []*photo.Photo
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Photo Gallery</title>
    {{- if .CSRFEnabled}}
    <meta name="_csrf" content="{{.CSRFToken}}">
    <meta name="_csrf_header" content="{{.CSRFHeader}}">
    {{- end}}
    <link href="https://cdn.jsdelivr.net/npm/tailwindcss@2.2.19/dist/tailwind.min.css" rel="stylesheet">
</head>
<body class="bg-gray-100">
    <div class="container mx-auto px-4 py-8">
        <h1 class="text-3xl font-bold mb-8">Photo Gallery</h1>
        <div class="mb-8 flex items-center gap-4">
            <input type="file" id="fileInput" accept="image/*" multiple class="hidden">
            <button id="uploadButton" class="bg-blue-500 text-white px-4 py-2 rounded hover:bg-blue-600">Upload photos</button>
            <label for="duplicateMode">If a photo already exists:</label>
            <select id="duplicateMode" class="border rounded px-2 py-1">
                <option value="cancel">Cancel</option>
                <option value="skip">Skip</option>
                <option value="overwrite">Overwrite</option>
            </select>
            <form method="get" action="/">
                <select name="sortBy" onchange="this.form.submit()" class="border rounded px-2 py-1">
                    <option value="uploadDate"{{if eq .Sort "uploadDate"}} selected{{end}}>Newest first</option>
                    <option value="uploadDateAsc"{{if eq .Sort "uploadDateAsc"}} selected{{end}}>Oldest first</option>
                    <option value="name"{{if eq .Sort "name"}} selected{{end}}>Name</option>
                    <option value="size"{{if eq .Sort "size"}} selected{{end}}>Size</option>
                </select>
            </form>
        </div>
        <div id="gallery" class="grid grid-cols-1 md:grid-cols-3 lg:grid-cols-4 gap-4">
            {{- range .Photos}}
            <a href="/api/photos/{{.ID}}/content" class="block bg-white rounded shadow p-2">
                <img src="/api/photos/{{.ID}}/thumbnail" alt="{{.OriginalName}}" loading="lazy" class="w-full">
                <p class="text-sm mt-2 truncate">{{.OriginalName}}</p>
            </a>
            {{- else}}
            <p class="text-gray-500">No photos yet.</p>
            {{- end}}
        </div>
    </div>
    <script>
    (function () {
        const input = document.getElementById('fileInput');
        document.getElementById('uploadButton').addEventListener('click', () => input.click());

        function csrf() {
            const token = document.querySelector('meta[name="_csrf"]');
            const header = document.querySelector('meta[name="_csrf_header"]');
            return {
                token: token ? token.getAttribute('content') : null,
                header: header ? header.getAttribute('content') : 'X-CSRF-TOKEN'
            };
        }

        input.addEventListener('change', async () => {
            const files = Array.from(input.files);
            if (files.length === 0) return;
            const mode = document.getElementById('duplicateMode').value;
            const cred = csrf();
            let failed = false;
            for (const file of files) {
                const body = new FormData();
                body.append('file', file);
                const headers = {};
                if (cred.token) headers[cred.header] = cred.token;
                try {
                    const res = await fetch('/api/photos?onDuplicate=' + encodeURIComponent(mode), {
                        method: 'POST', body: body, headers: headers, credentials: 'same-origin'
                    });
                    if (!res.ok) {
                        failed = true;
                        alert('Upload failed for ' + file.name + ': ' + await res.text());
                        break;
                    }
                } catch (e) {
                    failed = true;
                    alert('Upload failed for ' + file.name + ': ' + e.message);
                    break;
                }
            }
            input.value = '';
            if (!failed) location.reload();
        });
    })();
    </script>
</body>
</html>
`))

// galleryHandler renders the gallery page and publishes the session's CSRF
// token in its meta tags
func (h *Handler) galleryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sort := photo.ParseSortKey(r.URL.Query().Get("sortBy"))

	photos, err := h.photos.List(ctx, sort)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := galleryPage{
		CSRFEnabled: h.csrf.Enabled(),
		CSRFToken:   h.csrf.Token(r),
		CSRFHeader:  h.csrf.HeaderName(),
		Sort:        sort,
		Photos:      photos,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := galleryTemplate.Execute(w, page); err != nil {
		h.logger.Error(ctx).Err(err).Msg("Failed to render gallery page")
	}
}
