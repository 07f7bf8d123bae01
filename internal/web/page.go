package web

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>valvecalc: valve percentages</title>
  <style>
    *, *::before, *::after { box-sizing: border-box; }

    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      max-width: 40rem;
      margin: 0 auto;
      padding: 1rem;
      background-color: #f8f9fa;
      color: #212529;
    }

    @media (prefers-color-scheme: dark) {
      body { background-color: #1a1a2e; color: #e0e0e0; }
      input, button { background-color: #2d2d44; color: #e0e0e0; border-color: #444; }
    }

    h1 { font-size: 1.4rem; font-weight: 600; }

    form { display: grid; gap: 0.6rem; }
    label { display: grid; gap: 0.2rem; }
    label.check { display: flex; gap: 0.4rem; align-items: center; }

    input[type=text], input[type=number] {
      padding: 0.4rem;
      border: 1px solid #ccc;
      border-radius: 6px;
    }

    button {
      padding: 0.4rem 0.9rem;
      border: 1px solid #ccc;
      border-radius: 6px;
      cursor: pointer;
      justify-self: start;
    }

    .hidden { display: none; }
    .error { color: #c0392b; font-weight: 600; }
    pre { padding: 0.8rem; border: 1px solid #ccc; border-radius: 6px; overflow-x: auto; }
  </style>
</head>
<body>
  <h1>Valve percentages</h1>

  <form method="post" action="/">
    <label>Machines
      <input type="number" name="machines" min="1" step="1" value="{{.Fields.Machines}}" required>
    </label>
    <label>Decimals
      <input type="number" name="decimals" min="0" max="9" step="1" value="{{.Fields.Decimals}}" placeholder="{{.DefaultDecimals}}">
    </label>

    <label class="check">
      <input type="checkbox" id="asymmetric" name="asymmetric"{{if .Fields.Asymmetric}} checked{{end}}>
      Asymmetric split (split valve first, right side is the bypass)
    </label>
    <label id="split-field"{{if not .Fields.Asymmetric}} class="hidden"{{end}}>Machines on the left branch
      <input type="number" name="split" min="0" step="1" value="{{.Fields.SplitPoint}}">
    </label>

    <label class="check">
      <input type="checkbox" id="unequal" name="unequal"{{if .Fields.UnequalRates}} checked{{end}}>
      Unequal consumption rates
    </label>
    <label id="rates-field"{{if not .Fields.UnequalRates}} class="hidden"{{end}}>Rates, comma separated, one per machine
      <input type="text" name="rates" value="{{.Fields.Rates}}" placeholder="1, 1.5, 2">
    </label>

    <button type="submit">Calculate</button>
  </form>

  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .Result}}<pre id="result">{{.Result}}</pre>{{end}}

  <script>
    function bindToggle(boxId, fieldId) {
      var box = document.getElementById(boxId);
      var field = document.getElementById(fieldId);
      box.addEventListener('change', function () {
        field.classList.toggle('hidden', !box.checked);
      });
    }
    bindToggle('asymmetric', 'split-field');
    bindToggle('unequal', 'rates-field');
  </script>
</body>
</html>
`
